// Package relay provides an LLM inference relay that rewrites provider SSE
// streams into plain-text token streams.
package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/google/uuid"

	"github.com/streampipeco/streampipe/pkg/extract"
	"github.com/streampipeco/streampipe/pkg/sse"
	"github.com/streampipeco/streampipe/pkg/stream"
	"github.com/streampipeco/streampipe/relay/header"
	"github.com/streampipeco/streampipe/relay/worker"
)

// Relay is a transparent LLM inference relay. It forwards requests to the
// upstream provider and, when the upstream answers with an SSE stream,
// decodes it into the provider-independent plain-text token stream clients
// consume. Completed streams are enqueued for async recording via the worker
// pool.
type Relay struct {
	config        Config
	pool          *worker.Pool
	logger        *slog.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
}

// New creates a new Relay.
// The recorder is injected to handle async persistence of completed streams;
// a nil recorder records to the log.
// Returns an error if the configured provider is not recognized.
func New(config Config, recorder worker.Recorder, logger *slog.Logger) (*Relay, error) {
	if config.Provider == "" {
		return nil, errors.New("provider is required")
	}

	// Fail fast on unknown providers; per-stream extractors are constructed
	// fresh in the handlers.
	if _, err := extract.ForProvider(config.Provider); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	// Add compression middleware to handle responses
	app.Use(compress.New())

	wp, err := worker.NewPool(&worker.Config{
		Recorder: recorder,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	r := &Relay{
		config:        config,
		pool:          wp,
		logger:        logger,
		server:        app,
		headerHandler: header.NewHandler(),
		httpClient: &http.Client{
			// LLM requests can be slow, especially with thinking blocks
			Timeout: 5 * time.Minute,
		},
	}

	// Register transparent relay route - forwards any path to upstream
	app.All("/*", r.handleRelay)

	return r, nil
}

// Run starts the relay server on the configured listening address
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		"listen", r.config.ListenAddr,
		"upstream", r.config.UpstreamURL,
		"provider", r.config.Provider,
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay server using the provided listener.
func (r *Relay) RunWithListener(listener net.Listener) error {
	r.logger.Info("starting relay server",
		"listen", listener.Addr().String(),
		"upstream", r.config.UpstreamURL,
		"provider", r.config.Provider,
	)

	return r.server.Listener(listener)
}

// Close gracefully shuts down the relay and waits for the worker pool to drain
func (r *Relay) Close() error {
	err := r.server.Shutdown()
	r.pool.Close()
	return err
}

// Handler returns the relay as a standard http.HandlerFunc for embedding in
// net/http servers.
func (r *Relay) Handler() http.HandlerFunc {
	return adaptor.FiberApp(r.server)
}

// handleRelay forwards the request to the upstream provider. SSE responses
// are streamed back, either transformed into plain-text tokens or verbatim
// in passthrough mode; everything else is relayed as-is.
func (r *Relay) handleRelay(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := uuid.NewString()
	c.Set(header.RequestIDHeader, requestID)

	upstreamURL := r.config.UpstreamURL + c.Path()
	if q := c.Context().QueryArgs().String(); q != "" {
		upstreamURL += "?" + q
	}

	var reqBody io.Reader
	if body := c.Body(); len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but the streaming
	// goroutine runs asynchronously and needs the upstream connection to
	// remain open.
	httpReq, err := http.NewRequestWithContext(context.Background(), c.Method(), upstreamURL, reqBody)
	if err != nil {
		r.logger.Error("failed to create upstream request", "error", err, "request_id", requestID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	r.headerHandler.SetUpstreamRequestHeaders(c, httpReq)

	r.logger.Debug("forwarding request to upstream",
		"method", c.Method(),
		"url", upstreamURL,
		"request_id", requestID,
	)

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		r.logger.Error("upstream request failed", "error", err, "request_id", requestID)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
	}

	contentType := httpResp.Header.Get("Content-Type")
	if httpResp.StatusCode != http.StatusOK || !strings.HasPrefix(contentType, "text/event-stream") {
		return r.relayBuffered(c, httpResp, requestID)
	}

	if r.config.Passthrough {
		return r.relayRaw(c, httpResp, requestID, startTime)
	}

	return r.relayTokens(c, httpResp, requestID, startTime)
}

// relayBuffered relays a non-streaming upstream response verbatim, including
// upstream errors, preserving the status code.
func (r *Relay) relayBuffered(c *fiber.Ctx, httpResp *http.Response, requestID string) error {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		r.logger.Error("failed to read upstream response", "error", err, "request_id", requestID)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to read upstream response"})
	}

	if httpResp.StatusCode != http.StatusOK {
		r.logger.Warn("upstream returned error",
			"status", httpResp.StatusCode,
			"request_id", requestID,
		)
	}

	r.headerHandler.SetClientResponseHeaders(c, httpResp)

	return c.Status(httpResp.StatusCode).Send(respBody)
}

// relayTokens transforms the upstream SSE stream into a plain-text token
// stream. The stream pipeline owns the upstream body from here on.
func (r *Relay) relayTokens(c *fiber.Ctx, httpResp *http.Response, requestID string, startTime time.Time) error {
	extractor, err := extract.ForProvider(r.config.Provider)
	if err != nil {
		httpResp.Body.Close()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	var tokens int
	callbacks := stream.Callbacks{
		OnStart: func(context.Context) error {
			r.logger.Debug("stream started", "request_id", requestID)
			return nil
		},
		OnToken: func(context.Context, string) error {
			tokens++
			return nil
		},
		OnCompletion: func(_ context.Context, completion string) error {
			r.pool.Enqueue(worker.Job{
				RequestID:  requestID,
				Provider:   r.config.Provider,
				Completion: completion,
				Tokens:     tokens,
				Duration:   time.Since(startTime),
			})
			return nil
		},
	}

	out := stream.New(context.Background(), httpResp,
		stream.WithExtractor(extractor),
		stream.WithCallbacks(callbacks),
		stream.WithLogger(r.logger),
	)

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")

	// Set the token stream as the body stream with unknown size (-1), which
	// triggers chunked transfer encoding in fasthttp. Reads pull the pipeline
	// forward, so a slow client throttles the upstream.
	c.Context().Response.SetBodyStream(out, -1)

	return nil
}

// relayRaw forwards the upstream SSE stream verbatim while extracting tokens
// on the side for recording.
//
// io.Pipe is used instead of SetBodyStreamWriter: pw.Write blocks until
// fasthttp's writeBodyChunked reads from the pipe and flushes to the TCP
// socket, giving direct backpressure and true per-chunk streaming.
func (r *Relay) relayRaw(c *fiber.Ctx, httpResp *http.Response, requestID string, startTime time.Time) error {
	extractor, err := extract.ForProvider(r.config.Provider)
	if err != nil {
		httpResp.Body.Close()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	r.headerHandler.SetClientResponseHeaders(c, httpResp)

	pr, pw := io.Pipe()
	go r.teeEvents(httpResp, pw, extractor, requestID, startTime)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// teeEvents reads the upstream SSE stream, forwarding raw bytes verbatim to
// the pipe writer while parsing events for token accumulation.
func (r *Relay) teeEvents(httpResp *http.Response, pw *io.PipeWriter, extractor stream.Extractor, requestID string, startTime time.Time) {
	defer httpResp.Body.Close()
	defer pw.Close()

	var completion strings.Builder
	var tokens int

	tr := sse.NewTeeReader(httpResp.Body, pw)
	for {
		ev, err := tr.Next()
		if err != nil {
			r.logger.Error("error reading SSE stream", "error", err, "request_id", requestID)
			return
		}
		if ev == nil {
			break
		}

		// Skip termination sentinels like OpenAI's "[DONE]"
		if ev.Terminal() {
			continue
		}

		token, ok := extractor.ExtractToken(ev.Data)
		if !ok || token == "" {
			continue
		}
		tokens++
		completion.WriteString(token)
	}

	r.pool.Enqueue(worker.Job{
		RequestID:  requestID,
		Provider:   r.config.Provider,
		Completion: completion.String(),
		Tokens:     tokens,
		Duration:   time.Since(startTime),
	})
}
