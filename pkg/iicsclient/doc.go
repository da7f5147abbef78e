// Package iicsclient provides the primary entry point for constructing an
// Informatica Intelligent Cloud Services API client that implements the
// iics.Client interface.
//
// It layers login URL resolution, HTTP transport, session management, and
// response caching on top of the resource interfaces and types defined in
// the iics package. Most applications should import iicsclient to build a
// client, then use the returned iics.Client to access resource-specific
// clients, for example Connections(), RuntimeEnvironments(), Agents().
//
// Quick start
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
//
//	  // A region code resolves to the regional login host.
//	  cli, err := iicsclient.New(ctx, &iics.Config{
//	    LoginURL: "us",
//	    Username: "user@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer func() {
//	    cli.Logout(ctx)
//	    _ = cli.Close()
//	  }()
//
//	  connections, err := cli.Connections().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = connections
//	}
//
// # Scoped use
//
// WithClient builds a client, runs a function against it, and guarantees
// logout and transport cleanup on every path:
//
//	err := iicsclient.WithClient(ctx, config, func(cli iics.Client) error {
//	  _, err := cli.Agents().List(ctx)
//	  return err
//	})
package iicsclient
