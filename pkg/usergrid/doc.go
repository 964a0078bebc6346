// Package usergrid provides types, interfaces, and helpers for working with
// the Apache Usergrid REST API.
//
// # Overview
//
// The usergrid package defines the request pipeline types (Query, Request,
// Response, Auth) and the entity model (BaseEntity, User, Device), along
// with the Client interface. A concrete implementation is provided by the
// ugclient package, which wires configuration, transport and credential
// persistence. Most consumers should import ugclient to construct a client.
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
//	  cli, err := ugclient.New(ctx, &usergrid.Config{OrgID: "org", AppID: "sandbox"})
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := cli.Query(ctx, usergrid.NewQuery("pets").Eq("color", "black").Limit(20))
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.Entities
//	}
//
// # Queries and pagination
//
// Query builds the ql clause and URL fragment. Each filter joins the
// previous one with "and" unless Or or Not comes in between:
//
//	q := usergrid.NewQuery("restaurants").
//	  Eq("cuisine", "italian").
//	  Or().
//	  LocationWithin(1000, 37.77, -122.41).
//	  Desc("rating")
//
// A Response with a cursor has a next page. NextPage repeats the original
// request with the cursor set and auth resolved again:
//
//	for resp.HasNextPage() {
//	  resp, err = cli.NextPage(ctx, resp)
//	  if err != nil { break }
//	}
//
// # Authentication
//
// Every call resolves its credential in this order: a per-call
// override (AuthOverride, TokenOverride), then a one-shot credential set
// with UsingAuth, then the credential of the current AuthMode. An Auth is
// valid when it has a token that has not expired. A token with no known
// expiry is valid only when it was handed to the client directly. An
// override that is no longer valid sends the call without a credential.
//
// # Errors
//
// Failed calls return a *ResponseError. Helpers such as IsNotFound,
// IsAuthError, IsBadAccessToken and IsValidation branch on its Kind and
// Name. Requests that fail validation are never sent.
//
// # Interceptors and batches
//
// InterceptorChain runs request and response hooks around every HTTP
// exchange (logging, metrics, circuit breaking). BatchExecutor sends
// independent requests concurrently.
package usergrid
