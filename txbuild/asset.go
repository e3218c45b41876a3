package txbuild

import (
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// Asset is a Stellar asset named by a bundle denomination. The denomination
// is either "native" or CODE:ISSUER.
type Asset string

const NativeAsset = Asset("native")

func (a Asset) split() (code, issuer string) {
	code, issuer, _ = strings.Cut(string(a), ":")
	return code, issuer
}

// IsNative returns true if the asset is the native asset of the stellar
// network.
func (a Asset) IsNative() bool {
	return a == NativeAsset
}

// Code returns the asset code, or an empty string for the native asset.
func (a Asset) Code() string {
	if a.IsNative() {
		return ""
	}
	code, _ := a.split()
	return code
}

// Issuer returns the issuer of the asset, or an empty string for the native
// asset.
func (a Asset) Issuer() string {
	if a.IsNative() {
		return ""
	}
	_, issuer := a.split()
	return issuer
}

// Asset returns the asset as a stellar/go/txnbuild asset.
func (a Asset) Asset() txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code(), Issuer: a.Issuer()}
}

// Validate checks that the asset is native or a credit asset with a valid
// code and issuer.
func (a Asset) Validate() error {
	if a.IsNative() {
		return nil
	}
	if !strings.Contains(string(a), ":") {
		return fmt.Errorf("asset %q: must be native or CODE:ISSUER", string(a))
	}
	if _, err := keypair.ParseAddress(a.Issuer()); err != nil {
		return fmt.Errorf("asset %q: issuer: %w", string(a), err)
	}
	if _, err := a.Asset().ToXDR(); err != nil {
		return fmt.Errorf("asset %q: %w", string(a), err)
	}
	return nil
}

// StringCanonical returns the asset in the canonical form used by Horizon.
func (a Asset) StringCanonical() string {
	if a.IsNative() {
		return xdr.AssetTypeToString[xdr.AssetTypeAssetTypeNative]
	}
	return a.Code() + ":" + a.Issuer()
}
