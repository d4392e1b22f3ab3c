// Cupcake is a policy-enforcement engine for AI coding agent hooks: it
// reads one event as JSON on stdin, evaluates it against Rego policies
// compiled to WebAssembly, and writes one decision as JSON on stdout.
//
// Usage:
//
//	# Evaluate one Claude Code hook event
//	cupcake eval --harness claude-code < event.json
//
//	# Validate policy authoring against the decision-event compatibility matrix
//	cupcake verify ./policies
//
//	# Re-initialize the trust manifest after editing a signal script
//	cupcake trust init
//
//	# Scaffold .cupcake/ in the current directory
//	cupcake init
package main

func main() {
	Execute()
}
