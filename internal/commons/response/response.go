package response

import "net/http"

type Response struct {
	Status     bool        `json:"status"`
	StatusCode int         `json:"-"`
	Message    string      `json:"message"`
	Payload    interface{} `json:"payload,omitempty"`
}

func GeneralSuccess() *Response {
	return &Response{
		Status:     true,
		StatusCode: http.StatusOK,
		Message:    "success",
	}
}

func GeneralSuccessCustomMessageAndPayload(message string, payload interface{}) *Response {
	return &Response{
		Status:     true,
		StatusCode: http.StatusOK,
		Message:    message,
		Payload:    payload,
	}
}

func CreatedSuccessWithPayload(payload interface{}) *Response {
	return &Response{
		Status:     true,
		StatusCode: http.StatusCreated,
		Message:    "created",
		Payload:    payload,
	}
}

// AcceptedWithPayload is used when the request started work that completes later.
func AcceptedWithPayload(message string, payload interface{}) *Response {
	return &Response{
		Status:     true,
		StatusCode: http.StatusAccepted,
		Message:    message,
		Payload:    payload,
	}
}
