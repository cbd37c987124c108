// Command specproxy generates forwarding proxies for specification interfaces.
//
// A fixture field typed by a capability interface can only be injected when the
// inject.Registry knows how to build a proxy for that interface. specproxy writes
// that proxy so you don't have to:
//
//   - You write a tiny *.proxy.json (or *.proxy.yaml) spec next to the interface.
//   - You add a //go:generate ... directive in the owner Go file.
//   - specproxy generates a proxy type, its constructor and a Register function.
//
// Each generated method is a one-liner that resolves the current specification and
// forwards the call, so arguments, results and panics pass through untouched.
//
// Spec format
//
// Minimal example:
//
//	{
//	  "package": "users",
//	  "interface": "UserSpec"
//	}
//
// Optional keys:
//
//   - proxyName: the generated type name, default <Interface>Proxy
//   - source: the file declaring the interface, relative to the output file
//   - runtimeImport: import path of the inject package
//
// Typical go:generate usage
//
// Put this in the file declaring the interface:
//
//	//go:generate go run ../../cmd/specproxy -spec ./userspec.proxy.json -out ./userspec_proxy.gen.go
//
// Then:
//
//	go generate ./...
//
// Generated API (summary)
//
//	type UserSpecProxy struct{ resolve func() UserSpec }
//	func NewUserSpecProxy(resolve func() UserSpec) *UserSpecProxy
//	func RegisterUserSpecProxy(r *inject.Registry) error
//
// Embedded interfaces declared in the same package are flattened into the proxy.
// fixture.Specification is known to the generator; other foreign embedded
// interfaces are rejected and their methods must be listed explicitly.
package main
