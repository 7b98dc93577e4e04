// Package browser drives the real embedded widget inside a headless Chrome
// controlled through go-rod.
//
// The host page is served from a loopback HTTP listener so the widget's
// postMessage bridge sees a proper origin. Accessors evaluate the widget
// getter inside a promise; a getter that never calls back simply produces
// no reply once the request timeout passes. Events are bound for every
// known name when the page loads and routed to handlers through an exposed
// page function.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"soundstage/internal/logging"
	"soundstage/internal/poll"
	"soundstage/internal/widget"
)

// Options configures Open.
type Options struct {
	TrackURL string
	EmbedURL string
	// Bin is the Chrome binary. Empty lets the launcher find or download one.
	Bin string
	// DebuggerURL attaches to a running browser instead of launching one.
	DebuggerURL string
	Headless    bool
	// RequestTimeout bounds each page evaluation.
	RequestTimeout time.Duration
	Params         map[string]string
	Logger         *slog.Logger
}

// Widget is a widget.Widget backed by a browser page.
type Widget struct {
	opts   Options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	launch  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	server  *http.Server
	unbind  func() error

	mu       sync.Mutex
	closed   bool
	handlers map[widget.Event]widget.Handler
	onLoaded func()
}

var _ widget.Widget = (*Widget)(nil)

// Open launches or attaches to Chrome, serves the host page and waits until
// the widget API object exists in the page, so accessors and controls can be
// called as soon as Open returns. The sound list may still be loading; the
// accessors' placeholder replies cover that.
func Open(ctx context.Context, opts Options) (*Widget, error) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	src, err := EmbedSrc(opts.EmbedURL, opts.TrackURL, opts.Params)
	if err != nil {
		return nil, err
	}
	html, err := Page(src)
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "widget.browser"),
		ctx:      wctx,
		cancel:   cancel,
		handlers: make(map[widget.Event]widget.Handler),
	}
	if err := w.start(ctx, html); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Widget) start(ctx context.Context, html string) error {
	pageURL, err := w.serve(html)
	if err != nil {
		return err
	}

	controlURL := w.opts.DebuggerURL
	if controlURL == "" {
		w.launch = launcher.New().Headless(w.opts.Headless)
		if w.opts.Bin != "" {
			w.launch = w.launch.Bin(w.opts.Bin)
		}
		controlURL, err = w.launch.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
	}

	browser := rod.New().ControlURL(controlURL).Context(w.ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	w.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	w.page = page

	stop, err := page.Expose(exposedFunc, w.dispatch)
	if err != nil {
		return fmt.Errorf("expose event bridge: %w", err)
	}
	w.unbind = stop

	loadCtx, cancel := context.WithTimeout(ctx, 3*w.opts.RequestTimeout)
	defer cancel()
	if err := page.Context(loadCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("navigate to host page: %w", err)
	}
	if err := page.Context(loadCtx).WaitLoad(); err != nil {
		return fmt.Errorf("wait for host page: %w", err)
	}
	if err := w.waitForAPI(loadCtx); err != nil {
		return err
	}
	w.logger.Info("widget page loaded", logging.Args(
		logging.String("page_url", pageURL),
		logging.String("control_url", controlURL),
	)...)
	return nil
}

const apiDefinedJS = `() => typeof window.__soundstage !== "undefined"`

// waitForAPI blocks until the page script has created the widget object.
// The API script is fetched from the network, so it can lag the page load.
func (w *Widget) waitForAPI(ctx context.Context) error {
	_, err := poll.WaitFor(ctx, func() (struct{}, bool) {
		return struct{}{}, w.apiDefined(ctx)
	})
	if err != nil {
		return fmt.Errorf("wait for widget api: %w", err)
	}
	return nil
}

func (w *Widget) apiDefined(ctx context.Context) bool {
	res, err := w.page.Context(ctx).Evaluate(&rod.EvalOptions{JS: apiDefinedJS, ByValue: true})
	if err != nil {
		w.logger.Debug("widget api check failed", logging.Args(logging.Error(err))...)
		return false
	}
	return res.Value.Bool()
}

func (w *Widget) serve(html string) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen for host page: %w", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write([]byte(html))
	})
	w.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Warn("host page server stopped", logging.Args(logging.Error(err))...)
		}
	}()
	return "http://" + ln.Addr().String() + "/", nil
}

// dispatch receives {event, data} objects from the page.
func (w *Widget) dispatch(payload gson.JSON) (any, error) {
	event, data, err := decodeEvent(payload)
	if err != nil {
		w.logger.Debug("dropping malformed event", logging.Args(logging.Error(err))...)
		return nil, nil
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, nil
	}
	if event == loadedEvent {
		fn := w.onLoaded
		w.onLoaded = nil
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
		return nil, nil
	}
	handler := w.handlers[widget.Event(event)]
	w.mu.Unlock()
	if handler != nil {
		handler(widget.Event(event), data)
	}
	return nil, nil
}

func decodeEvent(payload gson.JSON) (string, *widget.AudioData, error) {
	event := payload.Get("event").Str()
	if event == "" {
		return "", nil, errors.New("event payload without a name")
	}
	if event != loadedEvent && !widget.Event(event).Valid() {
		return "", nil, fmt.Errorf("unknown event %q", event)
	}
	raw := payload.Get("data")
	if raw.Nil() {
		return event, nil, nil
	}
	// values under a parsed payload are already decoded; go through the JSON text
	var data widget.AudioData
	if err := json.Unmarshal([]byte(raw.JSON("", "")), &data); err != nil {
		return "", nil, fmt.Errorf("decode %s data: %w", event, err)
	}
	return event, &data, nil
}

func (w *Widget) eval(ctx context.Context, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return nil, widget.ErrClosed
	}
	return w.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
}

const getterJS = `(method) => new Promise((resolve) => window.__soundstage[method](resolve))`

// get runs a widget getter in the background. reply is called only if the
// getter answers within the request timeout.
func get[T any](w *Widget, method string, reply func(T)) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return widget.ErrClosed
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(w.ctx, w.opts.RequestTimeout)
		defer cancel()
		res, err := w.eval(ctx, getterJS, method)
		if err != nil {
			w.logger.Debug("getter produced no reply", logging.Args(
				logging.String(logging.FieldQuery, method),
				logging.Error(err),
			)...)
			return
		}
		var v T
		if err := res.Value.Unmarshal(&v); err != nil {
			w.logger.Debug("getter reply not decodable", logging.Args(
				logging.String(logging.FieldQuery, method),
				logging.Error(err),
			)...)
			return
		}
		reply(v)
	}()
	return nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func (w *Widget) Position(reply func(time.Duration)) error {
	return get(w, "getPosition", func(ms float64) { reply(millis(ms)) })
}

func (w *Widget) Duration(reply func(time.Duration)) error {
	return get(w, "getDuration", func(ms float64) { reply(millis(ms)) })
}

func (w *Widget) Volume(reply func(float64)) error {
	return get(w, "getVolume", reply)
}

func (w *Widget) CurrentSound(reply func(*widget.Sound)) error {
	return get(w, "getCurrentSound", reply)
}

func (w *Widget) Sounds(reply func([]widget.Sound)) error {
	return get(w, "getSounds", reply)
}

func (w *Widget) CurrentSoundIndex(reply func(int)) error {
	return get(w, "getCurrentSoundIndex", reply)
}

func (w *Widget) Paused(reply func(bool)) error {
	return get(w, "isPaused", reply)
}

// call invokes a widget method and waits for the page to accept it.
func (w *Widget) call(method string, args ...any) error {
	ctx, cancel := context.WithTimeout(w.ctx, w.opts.RequestTimeout)
	defer cancel()
	js := `(method, ...args) => { window.__soundstage[method](...args); }`
	if _, err := w.eval(ctx, js, append([]any{method}, args...)...); err != nil {
		if errors.Is(err, widget.ErrClosed) {
			return err
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (w *Widget) Load(trackURL string, opts widget.LoadOptions) error {
	w.mu.Lock()
	w.onLoaded = opts.Loaded
	w.mu.Unlock()
	ctx, cancel := context.WithTimeout(w.ctx, w.opts.RequestTimeout)
	defer cancel()
	js := `(url, opts, exposed, loaded) => {
		opts.callback = () => window[exposed]({ event: loaded, data: null });
		window.__soundstage.load(url, opts);
	}`
	if _, err := w.eval(ctx, js, trackURL, loadParams(opts), exposedFunc, loadedEvent); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

func (w *Widget) Play() error   { return w.call("play") }
func (w *Widget) Pause() error  { return w.call("pause") }
func (w *Widget) Toggle() error { return w.call("toggle") }
func (w *Widget) Next() error   { return w.call("next") }
func (w *Widget) Prev() error   { return w.call("prev") }

func (w *Widget) SeekTo(position time.Duration) error {
	return w.call("seekTo", position.Milliseconds())
}

func (w *Widget) SetVolume(volume float64) error {
	return w.call("setVolume", volume)
}

func (w *Widget) Skip(index int) error {
	if index < 0 {
		return fmt.Errorf("skip: negative index %d", index)
	}
	return w.call("skip", index)
}

func (w *Widget) Bind(event widget.Event, handler widget.Handler) error {
	if !event.Valid() {
		return fmt.Errorf("bind: unknown event %q", event)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return widget.ErrClosed
	}
	w.handlers[event] = handler
	return nil
}

func (w *Widget) Unbind(event widget.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return widget.ErrClosed
	}
	delete(w.handlers, event)
	return nil
}

// Close tears down the page, the browser (if launched here) and the host
// page server. Pending getters are abandoned.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	var errs []error
	if w.unbind != nil {
		if err := w.unbind(); err != nil {
			errs = append(errs, fmt.Errorf("stop event bridge: %w", err))
		}
	}
	if w.page != nil {
		if err := w.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	w.cancel()
	if w.browser != nil && w.launch != nil {
		if err := w.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		w.launch.Kill()
	}
	if w.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := w.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop host page server: %w", err))
		}
		cancel()
	}
	w.wg.Wait()
	return errors.Join(errs...)
}
