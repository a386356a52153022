package pipeline

// Request carries one observation artifact through the pipeline. Payload is
// the JSON wire form of the observation table.
type Request struct {
	Payload string `json:"payload"`
	Tid     string `json:"tid"`
}

// Pipeline runs one request and delivers the JSON response on the returned
// channel, one result per request.
type Pipeline func(Request) <-chan string
