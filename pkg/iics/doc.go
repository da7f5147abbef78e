// Package iics provides types, interfaces, and helpers for working with the
// Informatica Intelligent Cloud Services (IICS) REST API.
//
// # Overview
//
// The iics package defines the domain types (Session, Connection,
// RuntimeEnvironment, Agent), the typed error taxonomy for classified API
// failures, and the interfaces for resource-oriented clients. A concrete
// implementation of these clients is provided by the iicsclient package,
// which wires configuration, the pooled transport, session management, and
// reauthentication. Most consumers should import iicsclient to construct a
// client and then interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/iics-client/pkg/iics"
//	  "github.com/fivetwenty-io/iics-client/pkg/iicsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := iicsclient.New(ctx, &iics.Config{
//	    LoginURL: "us", // region code or full login URL
//	    Username: "user@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  conns, err := cli.Connections().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = conns
//	}
//
// # Sessions and reauthentication
//
// A successful login installs a Session whose serverUrl becomes the base URL
// for every subsequent call. When the server invalidates the session (HTTP
// 401 or 403), the client re-runs the login exchange and retries the request
// with fresh headers, up to Config.MaxReauthAttempts re-logins. Concurrent
// requests that observe expiry at the same time share a single in-flight
// login rather than each triggering their own.
//
// # API versions
//
// IICS exposes v2 and v3 surfaces that differ in both URL prefix (/api/v2 vs
// /api/v3) and the header that carries the session token (icSessionId vs
// INFA-SESSION-ID). APIVersion selects both; the distinction is a protocol
// fact and is preserved exactly.
//
// # Errors
//
// API failures are represented by Error, tagged with an ErrorKind (auth,
// not found, rate limit, server, validation, generic) and carrying the
// originating status code, the failing URL, and the raw response body.
// Helpers such as IsAuth, IsNotFound, and IsRateLimit make it easy to branch
// on common cases without matching message text.
//
// # Interceptors and caching
//
// The package includes request/response interceptors (logging, custom
// headers, metrics, client-side rate limiting) and a pluggable Cache
// abstraction with memory and NATS KV backends for read caching of GET
// responses. The iicsclient package composes these for a sensible default
// client; applications with advanced needs can use the primitives directly.
package iics
