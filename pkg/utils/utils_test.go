package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "riverside-youth-soccer", Slugify("  Riverside Youth Soccer! ", "-"))
	assert.Equal(t, "u12_girls_2024", Slugify("U12 Girls (2024)", "_"))
	assert.Equal(t, "", Slugify("***", "_"))
}

func TestFileSlug(t *testing.T) {
	assert.Equal(t, "st_mary_s_fc", FileSlug("St. Mary's FC", "report"))
	assert.Equal(t, "report", FileSlug("", "report"))
}

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateToken(UserClaims{UserID: "u1", OrgID: "org-1", Name: "Jo", Roles: []string{"admin"}}, time.Minute)
	assert.NoError(t, err)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "org-1", claims.OrgID)
	assert.Equal(t, "Jo", claims.DisplayName())
	assert.True(t, claims.HasRole("viewer", "admin"))
	assert.False(t, claims.HasRole("platform_admin"))

	SetSecret("other-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
