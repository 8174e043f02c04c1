// Package iiko provides a client for the iiko restaurant server API (resto API).
//
// The iiko server hands out a session key on login and holds one license
// slot per session. It also requires that requests on a session never
// overlap. Client takes care of both: it logs in lazily, caches the key,
// attaches it to every call as the "key" query parameter, and runs exactly
// one HTTP exchange at a time, including the implicit login.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := iiko.NewClient(iiko.Config{
//		BaseURL:  "https://example.iiko.it/resto/api",
//		Login:    "admin",
//		Password: iiko.HashPassword("secret"),
//		Timeout:  30 * time.Second,
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Logout(context.Background())
//
//	stores, err := client.GetStores(ctx, nil)
//
// Endpoint methods such as GetStores and ListSuppliers decode the server's
// XML or JSON into typed structs. Anything not covered can be reached through
// the raw verbs Get, Post, Put and Delete, which return the response body.
//
// # Sessions
//
// The session key is kept until Logout succeeds or InvalidateSession is
// called. It is never refreshed on its own: a call that fails with
// ErrUnauthorized leaves the key in place, and the caller decides whether
// to InvalidateSession and try again.
//
// # Error Handling
//
// Every operation returns *Error, whose Kind tells transport failures,
// rejected credentials and server-side rejections apart:
//
//	_, err := client.Post(ctx, "documents/import/incomingInvoice", body, iiko.ContentTypeXML, nil)
//	switch {
//	case errors.Is(err, iiko.ErrConflict):
//		// the server refused the document, err carries its reason
//	case errors.Is(err, iiko.ErrTransport):
//		// the server could not be reached
//	}
package iiko
