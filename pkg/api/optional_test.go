package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_Unmarshal(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantFull    Optional[string]
		wantEmail   Optional[string]
		wantPresent bool
	}{
		{
			name:      "absent fields",
			body:      `{}`,
			wantFull:  Optional[string]{},
			wantEmail: Optional[string]{},
		},
		{
			name:        "present value",
			body:        `{"full_name":"Carlos"}`,
			wantFull:    Some("Carlos"),
			wantEmail:   Optional[string]{},
			wantPresent: true,
		},
		{
			name:      "explicit null",
			body:      `{"full_name":null}`,
			wantFull:  Null[string](),
			wantEmail: Optional[string]{},
		},
		{
			name:        "empty string is a value",
			body:        `{"full_name":"","email":"c@x.com"}`,
			wantFull:    Some(""),
			wantEmail:   Some("c@x.com"),
			wantPresent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateUserRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantFull, req.FullName)
			assert.Equal(t, tt.wantEmail, req.Email)
			assert.Equal(t, tt.wantPresent, req.FullName.Present())
			assert.False(t, req.Password.Set)
		})
	}
}

func TestOptional_UnmarshalTypeMismatch(t *testing.T) {
	var req UpdateUserRequest
	err := json.Unmarshal([]byte(`{"email": 42}`), &req)
	assert.Error(t, err)
}

func TestUser_HasNoPasswordField(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Username: "carlos", Email: "c@x.com", Active: true})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "password_hash")
	assert.Equal(t, "carlos", fields["username"])
}
