package authclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/simstudio/authclient"
	"github.com/simstudio/authclient/partner"
)

// Guards the public API surface for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = authclient.New
	_ = authclient.DefaultConfig
	_ = authclient.LoadConfigFromEnv

	var _ *authclient.Client
	var _ authclient.Config
	var _ authclient.SubmitResult
	var _ authclient.PrimaryProvider
	var _ authclient.Navigator = authclient.NavigatorFunc(nil)
	var _ authclient.AuditSink = authclient.NoOpSink{}

	var _ error = authclient.ErrSubmissionInFlight
	var _ error = authclient.ErrValidation
	var _ error = authclient.ErrDecryptFailed
	var _ error = authclient.ErrThrottled
	var _ error = authclient.ErrNavigationFailed

	var _ func(*authclient.Client, context.Context, authclient.Credentials) (authclient.SubmitResult, error) = (*authclient.Client).Submit
	var _ func(*authclient.Client, context.Context, authclient.EncryptedCredentials) (authclient.SubmitResult, error) = (*authclient.Client).SubmitEncrypted
	var _ func(*authclient.Client, context.Context, partner.Request) (*http.Response, error) = (*authclient.Client).AuthorizedFetch
	var _ func(*authclient.Client, context.Context) error = (*authclient.Client).SignOut
	var _ func(*authclient.Client, context.Context) bool = (*authclient.Client).HasLoggedInBefore
}
