package github

import (
	"fmt"

	gradauth "github.com/gradauth/go-gradauth"
)

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func mapProfile(user *githubUser, email string, emailVerified bool) *gradauth.VerifiedProfile {
	if user == nil {
		return nil
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &gradauth.VerifiedProfile{
		Provider:      "github",
		ProviderID:    fmt.Sprintf("%d", user.ID),
		Email:         email,
		EmailVerified: emailVerified,
		Name:          name,
		Picture:       user.AvatarURL,
	}
}
