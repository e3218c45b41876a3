/*
Package option contains a state machine, contained in the Contract type, for
managing a covered option held in escrow by a custodian.

An option moves through the following states:

	              Instantiate
	                   |
	                   v
	            +-------------+  WithdrawUnlocked   +-----------+
	            |   Created   +-------------------->| Cancelled |
	            +------+------+                     +-----------+
	                   | Fund
	                   v
	            +-------------+
	            |   Funded    |
	            +------+------+
	                   | Underwrite
	                   v
	            +-------------+  WithdrawExpired    +-----------+
	            |   Locked    +-------------------->|  Expired  |
	            +------+------+                     +-----------+
	                   | Execute
	                   v
	            +-------------+
	            |  Executed   |
	            +-------------+

TransferOption can be called in any state and reassigns the holder without
changing the state.

Underwriting and execution are only allowed while the current logical time
is before the option's expiry. Settling an expired option is only allowed
once the current logical time has reached the expiry.

The Contract is configured with one of two funding variants. In the
separated variant the creator deposits the collateral when instantiating and
the holder deposits the premium when funding. In the combined variant the
holder deposits the premium and collateral together when funding, and the
asset and premium are forwarded to the holder and underwriter as soon as the
option is underwritten.

The premium is earned by the underwriter. It is paid out with the asset when
the option is underwritten in the combined variant, and with the collateral
when the option is executed or expires in the separated variant, so the
custodian holds nothing for an option in a terminal state. The premium is not
retained by the custodian after settlement.

Commands never move funds themselves. A successful command saves the updated
record and returns the transfers the custodian must make. The caller is
responsible for applying the saved record and the transfers together, or
neither.

None of the primitives in this package are threadsafe and synchronization
must be provided by the caller if the package is used in a concurrent
context.
*/
package option
