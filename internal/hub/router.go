package hub

import "strings"

// handlerFunc processes one inbound message.
type handlerFunc func(topic string, payload []byte) error

// router maps inbound topics to handlers. Exact topics are matched
// first; wildcard routes match any second segment (the publishing
// device's id) followed by a fixed suffix, so the most specific match
// always wins.
type router struct {
	prefix string
	exact  map[string]handlerFunc
	suffix []suffixRoute
}

// suffixRoute matches topics of the form {prefix}/{device}/{suffix}.
type suffixRoute struct {
	suffix  string
	handler handlerFunc
}

func newRouter(prefix string) *router {
	return &router{
		prefix: prefix,
		exact:  make(map[string]handlerFunc),
	}
}

// handleExact registers a handler for one exact topic.
func (r *router) handleExact(topic string, handler handlerFunc) {
	r.exact[topic] = handler
}

// handleSuffix registers a handler for {prefix}/{device}/{suffix}
// topics. The device segment is extracted by the handler's caller.
func (r *router) handleSuffix(suffix string, handler handlerFunc) {
	r.suffix = append(r.suffix, suffixRoute{suffix: suffix, handler: handler})
}

// route returns the handler for a topic, or nil when nothing matches.
// Every message is dispatched to at most one handler.
func (r *router) route(topic string) handlerFunc {
	if handler, ok := r.exact[topic]; ok {
		return handler
	}

	rest, ok := strings.CutPrefix(topic, r.prefix+"/")
	if !ok {
		return nil
	}
	device, tail, ok := strings.Cut(rest, "/")
	if !ok || device == "" {
		return nil
	}

	for _, sr := range r.suffix {
		if tail == sr.suffix {
			return sr.handler
		}
	}
	return nil
}
