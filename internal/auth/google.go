package auth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleScopes covers sign-in and mirroring events into the user's calendar.
var GoogleScopes = []string{
	googleoauth2.UserinfoEmailScope,
	googleoauth2.UserinfoProfileScope,
	calendar.CalendarScope,
}

type GoogleUser struct {
	Email   string
	Name    string
	Picture string
}

// NewGoogleConfig builds the OAuth client config either from a downloaded
// credentials.json or from a client id and secret. It returns nil when
// neither is available.
func NewGoogleConfig(credentialsFile, clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", credentialsFile, err)
		}
		config, err := google.ConfigFromJSON(data, GoogleScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
		if redirectURL != "" {
			config.RedirectURL = redirectURL
		}
		return config, nil
	}

	if clientID == "" {
		return nil, nil
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       GoogleScopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// GoogleProvider runs the server side of the Google sign-in code flow.
type GoogleProvider struct {
	config           *oauth2.Config
	userinfoEndpoint string
}

// NewGoogleProvider accepts a nil config, in which case sign-in is simulated.
func NewGoogleProvider(config *oauth2.Config, userinfoEndpoint string) *GoogleProvider {
	return &GoogleProvider{config: config, userinfoEndpoint: userinfoEndpoint}
}

func (gp *GoogleProvider) Configured() bool {
	return gp.config != nil && gp.config.ClientID != ""
}

// Config returns the OAuth config, nil when Google is not configured.
func (gp *GoogleProvider) Config() *oauth2.Config {
	return gp.config
}

func (gp *GoogleProvider) AuthURL(state string) string {
	return gp.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the callback code for a token and fetches the Google profile.
func (gp *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, GoogleUser, error) {
	tok, err := gp.config.Exchange(ctx, code)
	if err != nil {
		return nil, GoogleUser{}, fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(gp.config.Client(ctx, tok))}
	if gp.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(gp.userinfoEndpoint))
	}
	service, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, GoogleUser{}, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, GoogleUser{}, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return tok, GoogleUser{Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

// Simulate returns the development account used when Google is not configured.
func (gp *GoogleProvider) Simulate() GoogleUser {
	return GoogleUser{
		Email:   "user.google@gmail.com",
		Name:    "User Google",
		Picture: "https://ui-avatars.com/api/?name=User+Google&background=4285F4&color=fff",
	}
}
