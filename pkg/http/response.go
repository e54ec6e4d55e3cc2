package http

import (
	"encoding/json"
	"net/http"
)

const (
	MessageFailure    string = "failure"
	MessageNotFound   string = "not found"
	MessageBadRequest string = "bad request"
	MessageSuccess    string = "success"
)

type Response struct {
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Metadata interface{} `json:"metadata,omitempty"`
}

func Write(w http.ResponseWriter, httpcode int, r *Response) {
	js, err := json.Marshal(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpcode)
	w.Write(js)
}

// WriteError writes err with the failure message that matches httpcode.
func WriteError(w http.ResponseWriter, httpcode int, err error) {
	message := MessageFailure
	switch httpcode {
	case http.StatusNotFound:
		message = MessageNotFound
	case http.StatusBadRequest:
		message = MessageBadRequest
	}

	Write(w, httpcode, &Response{
		Message: message,
		Error:   err.Error(),
	})
}
