// Package ready gates a test run on the availability of the systems
// under test.
//
// A Check probes one dependency, such as the API base URL or the
// event broker. A Gate polls its checks until every one succeeds or
// the wait budget is spent, so suites fail fast with a clear message
// instead of drowning in connection errors from every test.
package ready
