package http

import (
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
)

const (
	signatureHeader256 = "X-Hub-Signature-256"
	signatureHeader    = "X-Hub-Signature"
)

// errMissingSignature is distinguished from a mismatch to answer 401 instead of 403
var errMissingSignature = goerr.New("missing webhook signature", goerr.T(types.ErrTagAuthentication))

// verifySignature checks the HMAC of the exact request body. sha256 is
// preferred, the legacy sha1 header is accepted when it is the only one.
func verifySignature(header http.Header, body []byte, secret string) error {
	signature := header.Get(signatureHeader256)
	if signature == "" {
		signature = header.Get(signatureHeader)
	}
	if signature == "" {
		return errMissingSignature
	}

	if err := github.ValidateSignature(signature, body, []byte(secret)); err != nil {
		return goerr.Wrap(err, "invalid webhook signature", goerr.T(types.ErrTagAuthentication))
	}
	return nil
}
