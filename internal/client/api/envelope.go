package api

import "encoding/json"

// codeOK is the application-level success code inside the response envelope.
const codeOK = 200

// envelope is the outer wrapper around every API response:
//
//	{"code": 200, "message": "success", "data": {...}}
//
// A code other than 200 marks an application-level failure even when the
// HTTP status was 2xx.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
