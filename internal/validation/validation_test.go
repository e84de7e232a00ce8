package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createPayload struct {
	UserID      string `validate:"required,username"`
	DisplayName string `validate:"required,display_name"`
	Password    string `validate:"required,password_strength"`
	Role        string `validate:"required,oneof=ADMIN TEACHER STUDENT LAB_TECHNICIAN"`
}

func validPayload() createPayload {
	return createPayload{
		UserID:      "alice",
		DisplayName: "Alice Smith",
		Password:    "Passw0rd!",
		Role:        "TEACHER",
	}
}

func TestValidPayloadPasses(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(validPayload()))
}

func TestUsernameBoundaries(t *testing.T) {
	v := New()

	p := validPayload()
	p.UserID = "ab"
	assert.Error(t, v.Struct(p))

	p.UserID = "abc"
	assert.NoError(t, v.Struct(p))

	p.UserID = "a.b-c_9"
	assert.NoError(t, v.Struct(p))

	p.UserID = "has space"
	assert.Error(t, v.Struct(p))

	p.UserID = "aaaaaaaaaaaaaaaaaaaaa" // 21 chars
	assert.Error(t, v.Struct(p))
}

func TestPasswordStrength(t *testing.T) {
	v := New()

	cases := []struct {
		password string
		ok       bool
	}{
		{"Ab1!", false},
		{"Abcdefg1!", true},
		{"abcdefg1!", false},
		{"ABCDEFG1!", false},
		{"Abcdefgh!", false},
		{"Abcdefg12", false},
		{"Passw0rd!", true},
	}

	for _, tc := range cases {
		p := validPayload()
		p.Password = tc.password
		err := v.Struct(p)
		if tc.ok {
			assert.NoError(t, err, tc.password)
		} else {
			assert.Error(t, err, tc.password)
		}
	}
}

func TestDisplayNameTrimmed(t *testing.T) {
	v := New()

	p := validPayload()
	p.DisplayName = " a "
	assert.Error(t, v.Struct(p))

	p.DisplayName = " ab "
	assert.NoError(t, v.Struct(p))
}

func TestRoleClosedSet(t *testing.T) {
	v := New()

	p := validPayload()
	p.Role = "JANITOR"
	assert.Error(t, v.Struct(p))

	p.Role = "LAB_TECHNICIAN"
	assert.NoError(t, v.Struct(p))
}

func TestReasonNamesField(t *testing.T) {
	v := New()

	p := validPayload()
	p.Password = "short"
	err := v.Struct(p)
	require.Error(t, err)
	assert.Contains(t, Reason(err), "password")
}
