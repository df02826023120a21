// Package primary adapts a better-auth style account service to authclient.PrimaryProvider.
//
// Sign-in posts to {BaseURL}/sign-in/email and verification codes are requested from
// {BaseURL}/email-otp/send-verification-otp. A 4xx response is a logical rejection carried
// as outcome.ProviderError in the result; a 5xx or transport failure is a Go error.
package primary
