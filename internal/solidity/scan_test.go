package solidity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hubSrc = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.24;

contract Hub is UUPSUpgradeable, AccessControlUpgradeable, PausableUpgradeable {
    bytes32 public constant KEEPER_ROLE = keccak256("KEEPER_ROLE");
    bytes32 public constant PAUSER_ROLE = keccak256("PAUSER_ROLE");

    function pause() external onlyRole(PAUSER_ROLE) {
        _pause();
    }

    function setKeeper(address k)
        external
        onlyRole(DEFAULT_ADMIN_ROLE)
    {
        keeper = k;
    }

    function rebalance() external {
        // KEEPER_ROLE_EXTRA is not a role
    }

    function harvest() external onlyRole(KEEPER_ROLE) {}
    function sweep() external onlyRole(KEEPER_ROLE) {}

    function _authorizeUpgrade(address) internal override onlyRole(DEFAULT_ADMIN_ROLE) {}

    uint256[48] private __gap;
}
`

func TestRoles_WordBoundary(t *testing.T) {
	roles := Roles(hubSrc, []string{"UPGRADER_ROLE", "PAUSER_ROLE", "KEEPER_ROLE", "DEFAULT_ADMIN_ROLE"})
	assert.Equal(t, []string{"DEFAULT_ADMIN_ROLE", "KEEPER_ROLE", "PAUSER_ROLE"}, roles)

	assert.Empty(t, Roles("KEEPER_ROLES = 1;", []string{"KEEPER_ROLE"}))
}

func TestRoleFunctionMap_ForwardScan(t *testing.T) {
	got := RoleFunctionMap(hubSrc)
	want := map[string][]string{
		"PAUSER_ROLE": {"pause"},
		"KEEPER_ROLE": {"harvest", "sweep"},
		// the guard on setKeeper's continuation line is credited to the next declaration
		"DEFAULT_ADMIN_ROLE": {"_authorizeUpgrade", "rebalance"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RoleFunctionMap mismatch (-want +got):\n%s", diff)
	}
}

func TestRoleFunctionMap_MergesPendingGuards(t *testing.T) {
	src := "    // onlyRole(MINTER_ROLE) documented here\n" +
		"    // onlyRole(BURNER_ROLE)\n" +
		"    function mintAndBurn() external {}\n" +
		"    function plain() external {}\n"
	got := RoleFunctionMap(src)
	assert.Equal(t, map[string][]string{"BURNER_ROLE, MINTER_ROLE": {"mintAndBurn"}}, got)
}

func TestRoleFunctionMap_NeverRecordsEmptySets(t *testing.T) {
	srcs := []string{
		"",
		"function a() external {}\nfunction b() external {}",
		"modifier m() { _; }\nonlyRole(X)",
		hubSrc,
	}
	for _, src := range srcs {
		for k, fns := range RoleFunctionMap(src) {
			assert.NotEmpty(t, fns, "role expression %q", k)
		}
	}
	assert.Empty(t, RoleFunctionMap("onlyRole(KEEPER_ROLE) without any function"))
}

func TestUpgradeMarkers(t *testing.T) {
	assert.True(t, IsUpgradeable(hubSrc))
	assert.True(t, HasAuthorizeUpgradeHook(hubSrc))
	assert.True(t, HasStorageGap(hubSrc))

	hookOnly := "function _authorizeUpgrade(address) internal override {}"
	assert.True(t, IsUpgradeable(hookOnly))

	baseOnly := "contract X is UUPSUpgradeable {}"
	assert.True(t, IsUpgradeable(baseOnly))
	assert.False(t, HasAuthorizeUpgradeHook(baseOnly))
	assert.False(t, HasStorageGap(baseOnly))

	assert.False(t, IsUpgradeable("contract Plain {}"))
	assert.True(t, HasStorageGap("uint256[50] private __gap ;"))
}

func TestFindFunction_BraceDepth(t *testing.T) {
	src := `contract Hub {
    // requestWithdraw is documented here and calls whenNotPaused-free code
    function requestWithdraw(uint256 shares, bytes calldata data) external returns (uint256 id) {
        if (shares == 0) { revert("zero {"); }
        /* } whenNotPaused */
        id = _enqueue(shares);
    }

    function claimWithdraw(uint256 id) external whenNotPaused {
        requestWithdraw(0, "");
    }
}`
	fn, ok := FindFunction(src, "requestWithdraw")
	require.True(t, ok)
	assert.Equal(t, "external", fn.Visibility())
	assert.True(t, fn.Callable())
	assert.Contains(t, fn.Body, "_enqueue(shares)")
	assert.NotContains(t, fn.Body, "claimWithdraw")
	assert.True(t, fn.Mentions("whenNotPaused"), "comment text inside the body is still body text")

	claim, ok := FindFunction(src, "claimWithdraw")
	require.True(t, ok)
	assert.True(t, claim.Mentions("whenNotPaused"))
	assert.Contains(t, claim.Header, "whenNotPaused")
}

func TestFindFunction_InterfaceAndMissing(t *testing.T) {
	fn, ok := FindFunction("interface I { function f(uint256 a) external view returns (uint256); }", "f")
	require.True(t, ok)
	assert.Empty(t, fn.Body)
	assert.Equal(t, "external", fn.Visibility())

	_, ok = FindFunction("contract C {}", "f")
	assert.False(t, ok)

	internalFn, ok := FindFunction("function _g(uint a) internal { }", "_g")
	require.True(t, ok)
	assert.False(t, internalFn.Callable())
}
