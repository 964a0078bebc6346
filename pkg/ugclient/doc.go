// Package ugclient provides the primary entry point for constructing a
// Usergrid client that implements the usergrid.Client interface.
//
// It layers configuration, HTTP transport, credential persistence and an
// optional eager login on top of the types defined in the usergrid package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/usergrid-client/pkg/ugclient"
//	  "github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Anonymous access to a sandbox application.
//	  cli, err := ugclient.New(ctx, &usergrid.Config{OrgID: "org", AppID: "sandbox"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in as a user before the first call.
//	  cli, err = ugclient.NewWithPassword(ctx, "https://api.example.com", "org", "app", "alice", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := cli.List(ctx, "pets")
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.Entities
//	}
//
// # Environment
//
// ConfigFromEnv reads USERGRID_* variables, loading a .env file first when
// one exists. USERGRID_STORE selects where tokens are kept between runs
// (memory, bolt, file or nats). Call Close with the config when done so the
// store is released.
//
// # Helpers
//
// NewWithToken, NewWithClientCredentials and NewWithPassword cover the
// common setups. SetDefault and Default hold a process-wide client for
// application entry points.
package ugclient
