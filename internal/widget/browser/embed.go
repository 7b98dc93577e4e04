package browser

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"sort"

	"soundstage/internal/widget"
)

// APIScript is the widget's postMessage bridge.
const APIScript = "https://w.soundcloud.com/player/api.js"

// exposedFunc is the page-global function events are reported through.
const exposedFunc = "soundstageEvent"

// loadedEvent is reported when a Load callback fires. It is not a widget
// event and never reaches bound handlers.
const loadedEvent = "__loaded"

// EmbedSrc builds the iframe src for trackURL. Params are added in key
// order after the url parameter.
func EmbedSrc(embedURL, trackURL string, params map[string]string) (string, error) {
	base, err := url.Parse(embedURL)
	if err != nil {
		return "", fmt.Errorf("parse embed url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("embed url must be http(s): %q", embedURL)
	}
	q := base.Query()
	q.Set("url", trackURL)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, params[k])
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>soundstage</title></head>
<body>
<iframe id="player" width="100%" height="166" allow="autoplay" src="{{.Src}}"></iframe>
<script src="{{.API}}"></script>
<script>
(function () {
  const widget = SC.Widget(document.getElementById("player"));
  window.__soundstage = widget;
  const audio = new Set({{.Audio}});
  for (const name of {{.Events}}) {
    widget.bind(name, function (data) {
      window[{{.Exposed}}]({ event: name, data: audio.has(name) ? data : null });
    });
  }
})();
</script>
</body>
</html>
`))

// Page renders the host page for the iframe src.
func Page(src string) (string, error) {
	audio := make([]string, 0, len(widget.AudioEvents))
	for _, e := range widget.AudioEvents {
		audio = append(audio, string(e))
	}
	events := append([]string(nil), audio...)
	for _, e := range widget.UIEvents {
		events = append(events, string(e))
	}
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Src     string
		API     string
		Audio   []string
		Events  []string
		Exposed string
	}{
		Src:     src,
		API:     APIScript,
		Audio:   audio,
		Events:  events,
		Exposed: exposedFunc,
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// loadParams converts LoadOptions to the widget's load option object. The
// callback is attached in the page.
func loadParams(opts widget.LoadOptions) map[string]any {
	out := map[string]any{
		"auto_play":     opts.AutoPlay,
		"show_artwork":  opts.ShowArtwork,
		"show_comments": opts.ShowComments,
	}
	if opts.Color != "" {
		out["color"] = opts.Color
	}
	for k, v := range opts.Params {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
