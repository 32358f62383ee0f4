package middleware

import (
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// Transport attaches the session bearer header to outgoing requests.
//
// Requests that already carry an Authorization header are sent unchanged, as
// are requests made while no session is held.
type Transport struct {
	Manager *goAuthClient.Manager
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Manager == nil || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}

	header, ok := t.Manager.BearerHeader()
	if !ok {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", header)
	return base.RoundTrip(out)
}

// Client returns an http.Client that sends requests through a Transport
// bound to mgr.
func Client(mgr *goAuthClient.Manager) *http.Client {
	return &http.Client{Transport: &Transport{Manager: mgr}}
}
