//go:build cupcake_trust_testfixture

package trust

// This file must only ever be compiled into test binaries. Its build tag,
// cupcake_trust_testfixture, is not part of any release build configuration.
func init() {
	testFixtureEnabled = true
}
