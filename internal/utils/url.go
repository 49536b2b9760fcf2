package utils

import (
	"fmt"
	"net/url"
)

// GetTransactionSessionUrl returns the URL the wallet opens to review and
// sign the contract call of a transaction session.
func GetTransactionSessionUrl(baseUrl string, serverPort int, sessionId string) (string, error) {
	return sessionUrl(baseUrl, serverPort, "tx", sessionId)
}

// GetWalletSignInUrl returns the URL the wallet opens to complete a pending
// sign-in.
func GetWalletSignInUrl(baseUrl string, serverPort int, sessionId string) (string, error) {
	return sessionUrl(baseUrl, serverPort, "wallet", sessionId)
}

func sessionUrl(baseUrl string, serverPort int, prefix, sessionId string) (string, error) {
	if baseUrl == "" {
		baseUrl = fmt.Sprintf("http://localhost:%d", serverPort)
	}

	parsedUrl, err := url.Parse(baseUrl)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if parsedUrl.Scheme == "" || parsedUrl.Host == "" {
		return "", fmt.Errorf("invalid base url %q: scheme and host are required", baseUrl)
	}

	return parsedUrl.JoinPath(prefix, sessionId).String(), nil
}
