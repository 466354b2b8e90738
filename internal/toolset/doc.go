// Package toolset starts a set of stdio MCP servers, turns every tool they
// advertise into an [Adapter], and tears all of them down again through a
// single [CleanupFunc].
//
// # Startup
//
// [Initialize] brings servers up in two passes on the calling goroutine.
// Pass one launches every process; launching returns as soon as the child
// has started, so slow-booting servers overlap. Pass two runs the MCP
// initialize handshake and tools/list against each launched process in
// turn:
//
//	adapters, cleanup, err := toolset.Initialize(ctx, cfg.Servers, logger)
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
//	for _, a := range adapters {
//	    fmt.Println(a.Server(), a.Name())
//	}
//
// Adapters are ordered by server name, then by the order each server
// advertised its tools.
//
// # Teardown
//
// Every process and session is recorded on a release stack the moment it
// is acquired. The cleanup function unwinds that stack in reverse, across
// all servers, and attempts every release even when earlier ones fail.
// [Coordinator.Abort] runs the same unwind at any point, including while
// [Coordinator.Initialize] is still in progress.
//
// # Failure Policy
//
// With [PolicyStrict] (the default) the first server that cannot be
// launched or initialized aborts startup and everything acquired so far is
// released. With [PolicyIsolate] that server is dropped and recorded in
// [Coordinator.Failures]; startup only fails when no server comes up.
//
// # Errors
//
// All failures are [*ServerError] values carrying the server name and, for
// calls, the tool name. Match the kind with errors.Is:
//
//	if errors.Is(err, toolset.ErrToolExecution) {
//	    // err.Error() contains the text the tool returned
//	}
package toolset
