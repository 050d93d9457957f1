package drive

import (
	"context"
	"fmt"
	"time"

	"paceaid/pkg/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
)

// OAuth handles the authorization-code exchange. Tokens are handed straight
// back to the frontend, which supplies them per request; nothing is stored.
type OAuth struct {
	config *oauth2.Config
}

func NewOAuth(clientID, clientSecret, redirectURI string) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				gdrive.DriveFileScope,
				gdrive.DriveScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (o *OAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*types.TokenResponse, error) {

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	expiresIn := int64(3600)
	if !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return &types.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
