package canvas

import (
	"errors"

	"golang.org/x/oauth2"
)

// IsUpstreamError reports whether a token-endpoint failure came back as a
// non-2xx HTTP response from the authorization server. Everything else
// (a 2xx body missing access_token, transport errors) is the soft
// exchange failure.
func IsUpstreamError(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re)
}

// IsServerError reports whether the authorization server answered 5xx.
func IsServerError(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	return re.Response != nil && re.Response.StatusCode >= 500
}

// UpstreamBody returns the raw response body of an upstream failure for
// logging; empty when the error is not an upstream response.
func UpstreamBody(err error) string {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return ""
	}
	return string(re.Body)
}
