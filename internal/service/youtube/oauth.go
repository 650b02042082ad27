package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// OAuthFlow manages the installed-app authorization used instead of an API key.
type OAuthFlow struct {
	config    *oauth2.Config
	tokenFile string
	logger    *zap.Logger
}

func NewOAuthFlow(credentialsFile, tokenFile string, logger *zap.Logger) (*OAuthFlow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credBytes, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	return &OAuthFlow{
		config:    config,
		tokenFile: tokenFile,
		logger:    logger,
	}, nil
}

// HTTPClient returns an authorized client built from the saved token.
func (f *OAuthFlow) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := loadToken(f.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no saved token in %s (run the authorize command): %w", f.tokenFile, err)
	}
	return f.config.Client(ctx, token), nil
}

// Authorize prints the consent URL, reads the code from in and stores the token.
func (f *OAuthFlow) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	authURL := f.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Fprintln(out, "=== YouTube API Authorization ===")
	fmt.Fprintln(out, "Go to the following link in your browser:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out, "After authorization, enter the code here:")

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return fmt.Errorf("unable to read authorization code: %w", err)
	}

	token, err := f.config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("unable to retrieve token: %w", err)
	}

	if err := saveToken(f.tokenFile, token); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}

	f.logger.Info("YouTube OAuth authorization complete",
		zap.String("token_file", f.tokenFile))
	return nil
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
