package graphql

// Response is the uniform envelope every resolver returns, mirroring the
// REST-ish codes the site frontend expects inside the GraphQL data.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    []any  `json:"data"`
}

func OK(data ...any) *Response {
	if data == nil {
		data = []any{}
	}
	return &Response{Code: 200, Message: "Success", Success: true, Data: data}
}

// Unauthorized is the single shape every authorization-path failure takes:
// missing credential, bad token, missing permission and untrusted sender
// are indistinguishable on the wire.
func Unauthorized() *Response {
	return &Response{Code: 403, Message: "Unauthorized request!", Success: false, Data: []any{}}
}

func BadRequest(message string) *Response {
	if message == "" {
		message = "Bad request! Try one more time!"
	}
	return &Response{Code: 400, Message: message, Success: false, Data: []any{}}
}

// ServerFailure marks infrastructure trouble, distinct from authorization
// failure. No detail leaks to the client; see the logs.
func ServerFailure() *Response {
	return &Response{Code: 500, Message: "Query failed! See more at logs.", Success: false, Data: []any{}}
}
