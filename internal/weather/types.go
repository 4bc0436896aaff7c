package weather

// DefaultLocation is used when a request carries no location parameter.
const DefaultLocation = "default"

const genericFailureMessage = "prediction failed"

// Query is the per-request input. Location is passed to the predictor as-is.
type Query struct {
	Location string
}

// NewQuery applies the fallback only when the parameter is absent; a present but
// empty value is kept.
func NewQuery(value string, present bool, fallback string) Query {
	if present {
		return Query{Location: value}
	}
	if fallback == "" {
		fallback = DefaultLocation
	}
	return Query{Location: fallback}
}

type Response struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Location    string  `json:"location"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Result is either a Success carrying a Response or a Failure carrying the cause.
type Result struct {
	response Response
	err      error
}

func Success(r Response) Result {
	return Result{response: r}
}

func Failure(err error) Result {
	if err == nil {
		err = errFailure
	}
	return Result{err: err}
}

func (r Result) OK() bool {
	return r.err == nil
}

func (r Result) Response() Response {
	return r.response
}

func (r Result) Err() error {
	return r.err
}

// Message is the text for the error field; never empty for a Failure.
func (r Result) Message() string {
	if r.err == nil {
		return ""
	}
	if msg := r.err.Error(); msg != "" {
		return msg
	}
	return genericFailureMessage
}

// ErrorResponse renders a Failure for the wire.
func (r Result) ErrorResponse() ErrorResponse {
	return ErrorResponse{Error: r.Message()}
}
