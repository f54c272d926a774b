package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sitecrew/backoffice/internal/notify"
	"github.com/sitecrew/backoffice/internal/provision"
	memorystore "github.com/sitecrew/backoffice/internal/store/memory"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadBatchFile(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantCount int
		wantErr   string
	}{
		{
			name: "yaml",
			file: "admins.yaml",
			content: `admins:
  - email: ops.superadmin@sitecrew.io
    password: hunter22
  - email: olive@acme.example
    password: hunter22
    firstName: Olive
    companyId: 0195f3a4-3c2e-7d61-9a3b-6d2f0c1e4b5a
`,
			wantCount: 2,
		},
		{
			name:      "json",
			file:      "admins.json",
			content:   `{"admins":[{"email":"ops.superadmin@sitecrew.io","password":"hunter22"}]}`,
			wantCount: 1,
		},
		{
			name:    "empty",
			file:    "admins.yaml",
			content: "admins: []\n",
			wantErr: "no admins listed",
		},
		{
			name:    "malformed json",
			file:    "admins.json",
			content: "{",
			wantErr: "failed to parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := loadBatchFile(writeFile(t, tt.file, tt.content))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, batch.Admins, tt.wantCount)
		})
	}
}

func TestLoadBatchFile_Fields(t *testing.T) {
	batch, err := loadBatchFile(writeFile(t, "admins.yml", `admins:
  - email: olive@acme.example
    password: hunter22
    firstName: Olive
    lastName: Owner
    companyId: 0195f3a4-3c2e-7d61-9a3b-6d2f0c1e4b5a
    companyName: Acme Builders
`))
	require.NoError(t, err)
	require.Equal(t, provision.Request{
		Email:       "olive@acme.example",
		Password:    "hunter22",
		FirstName:   "Olive",
		LastName:    "Owner",
		CompanyID:   "0195f3a4-3c2e-7d61-9a3b-6d2f0c1e4b5a",
		CompanyName: "Acme Builders",
	}, batch.Admins[0])
}

func TestProvisionCmd_Requests(t *testing.T) {
	_, err := (&ProvisionCmd{}).requests()
	require.ErrorContains(t, err, "email is required")

	reqs, err := (&ProvisionCmd{Email: "a@b.co", Password: "x", CompanyName: "Acme"}).requests()
	require.NoError(t, err)
	require.Equal(t, []provision.Request{{Email: "a@b.co", Password: "x", CompanyName: "Acme"}}, reqs)
}

func TestRunBatch(t *testing.T) {
	engine := provision.NewEngine(memorystore.NewIdentityStore(), memorystore.NewProfileStore(), notify.LogSender{})

	var out bytes.Buffer
	err := runBatch(context.Background(), engine, []provision.Request{
		{Email: "ops.superadmin@sitecrew.io", Password: "hunter22"},
		{Email: "ops.superadmin@sitecrew.io", Password: "hunter22"},
		{Email: "", Password: "hunter22"},
	}, &out)

	require.EqualError(t, err, "1 of 3 admins failed to provision")
	require.Contains(t, out.String(), "201   ops.superadmin@sitecrew.io: Super admin created successfully")
	require.Contains(t, out.String(), "200   ops.superadmin@sitecrew.io: User already exists with the requested profile")
	require.Contains(t, out.String(), "FAIL  : Email is required")
}
