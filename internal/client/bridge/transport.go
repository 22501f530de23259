package bridge

// Transport is one delivery channel between the page and the bridge. The
// bridge answers on whichever transport a request arrived on. Delivery is
// at-least-once across transports; page-side consumers deduplicate by
// response shape.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// Requests yields inbound page requests.
	Requests() <-chan Request

	// Send delivers a response or broadcast toward the page. Best-effort:
	// implementations drop rather than block when nobody is reading.
	Send(resp Response)
}

// ChannelTransport is an in-process Transport backed by buffered channels.
// It stands in for an environment-specific delivery channel (structured page
// messaging, custom DOM events); a real embedding replaces it at this seam.
type ChannelTransport struct {
	name      string
	in        chan Request
	out       chan Response
	supported map[string]bool
	stampTag  bool
}

// NewPageTransport models the structured-messaging channel: every request
// type, with the source tag supplied by the page.
func NewPageTransport(buffer int) *ChannelTransport {
	return &ChannelTransport{
		name: "page-message",
		in:   make(chan Request, buffer),
		out:  make(chan Response, buffer),
	}
}

// NewEventTransport models the custom-DOM-event channel: only the video list
// and all-notes requests exist as event names, and the event name itself
// addresses the bridge, so the source tag is stamped on delivery.
func NewEventTransport(buffer int) *ChannelTransport {
	return &ChannelTransport{
		name: "custom-event",
		in:   make(chan Request, buffer),
		out:  make(chan Response, buffer),
		supported: map[string]bool{
			TypeRequestLocalVideos: true,
			TypeRequestAllNotes:    true,
		},
		stampTag: true,
	}
}

func (t *ChannelTransport) Name() string { return t.name }

func (t *ChannelTransport) Requests() <-chan Request { return t.in }

// Deliver injects a page request. Unsupported types on a restricted channel
// are dropped, as are requests when the buffer is full.
func (t *ChannelTransport) Deliver(req Request) {
	if t.supported != nil && !t.supported[req.Type] {
		return
	}
	if t.stampTag {
		req.Source = SourceDashboard
	}
	select {
	case t.in <- req:
	default:
	}
}

// Send queues a response toward the page, dropping when nobody keeps up.
func (t *ChannelTransport) Send(resp Response) {
	select {
	case t.out <- resp:
	default:
	}
}

// Responses yields bridge responses for the page side.
func (t *ChannelTransport) Responses() <-chan Response { return t.out }
