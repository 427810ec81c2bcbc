package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type captured struct {
	method string
	uri    string
	auth   string
	body   map[string]any
}

func newAdminServer(t *testing.T, status int, response string) (*Client, *captured) {
	t.Helper()
	c := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.uri = r.URL.RequestURI()
		c.auth = r.Header.Get("Authorization")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			json.Unmarshal(data, &c.body)
		}
		if response != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return NewClient(NewTransport(server.URL, &staticSession{token: "tok"})), c
}

func TestClientRoutes(t *testing.T) {
	ctx := context.Background()
	limit := int64(1024)

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantURI    string
		wantAuth   string
	}{
		{"admin token status", func(c *Client) error { _, err := c.AdminTokenStatus(ctx); return err }, "GET", "/api/admin-token", ""},
		{"set admin token", func(c *Client) error { return c.SetAdminToken(ctx, "n") }, "PUT", "/api/admin-token", ""},
		{"bootstrap info", func(c *Client) error { _, err := c.BootstrapInfo(ctx); return err }, "GET", "/api/bootstrap", ""},
		{"bootstrap", func(c *Client) error {
			_, err := c.Bootstrap(ctx, BootstrapRequest{Token: "n", FtpRoot: "/r"})
			return err
		}, "PUT", "/api/bootstrap", ""},
		{"list users", func(c *Client) error { _, err := c.ListUsers(ctx); return err }, "GET", "/api/users", "Bearer tok"},
		{"get user", func(c *Client) error { _, err := c.GetUser(ctx, "a b"); return err }, "GET", "/api/users/a%20b", "Bearer tok"},
		{"create user", func(c *Client) error { return c.CreateUser(ctx, "bob", "pw") }, "POST", "/api/users", "Bearer tok"},
		{"update user", func(c *Client) error {
			return c.UpdateUser(ctx, "bob", UserUpdate{Enabled: true, RateLimit: &limit})
		}, "PUT", "/api/users/bob", "Bearer tok"},
		{"delete user", func(c *Client) error { return c.DeleteUser(ctx, "bob") }, "DELETE", "/api/users/bob", "Bearer tok"},
		{"get permissions", func(c *Client) error { _, err := c.GetUserPermissions(ctx, "bob"); return err }, "GET", "/api/user-permissions?user=bob", "Bearer tok"},
		{"save permissions", func(c *Client) error { return c.SaveUserPermissions(ctx, Permissions{Username: "bob"}) }, "POST", "/api/user-permissions", "Bearer tok"},
		{"get limits", func(c *Client) error { _, err := c.GetLimits(ctx); return err }, "GET", "/api/limits", "Bearer tok"},
		{"set limits", func(c *Client) error { return c.SetLimits(ctx, Limits{GlobalMaxConnections: 5}) }, "PUT", "/api/limits", "Bearer tok"},
		{"stats", func(c *Client) error { _, err := c.Stats(ctx); return err }, "GET", "/api/stats", "Bearer tok"},
		{"live stats", func(c *Client) error { _, err := c.LiveStats(ctx); return err }, "GET", "/api/stats/live", "Bearer tok"},
		{"folders", func(c *Client) error { _, err := c.Folders(ctx, "bob"); return err }, "GET", "/api/folders?user=bob", "Bearer tok"},
		{"folder permissions", func(c *Client) error { _, err := c.FolderPermissions(ctx, "a b"); return err }, "GET", "/api/folders/permissions?username=a+b", "Bearer tok"},
		{"save folder permission", func(c *Client) error {
			return c.SaveFolderPermission(ctx, "bob", FolderPermission{Folder: "/pub"})
		}, "POST", "/api/folders/permissions/save", "Bearer tok"},
		{"shared folders", func(c *Client) error { _, err := c.SharedFolders(ctx, "bob"); return err }, "GET", "/api/shared-folders?username=bob", "Bearer tok"},
		{"share folder", func(c *Client) error { return c.ShareFolder(ctx, SharedFolder{FolderPath: "/x"}) }, "POST", "/api/shared-folders/share", "Bearer tok"},
		{"delete shared folder", func(c *Client) error { return c.DeleteSharedFolder(ctx, "/x/y") }, "DELETE", "/api/shared-folders/delete?folderPath=%2Fx%2Fy", "Bearer tok"},
		{"get root", func(c *Client) error { _, err := c.GetRoot(ctx); return err }, "GET", "/api/root", "Bearer tok"},
		{"set root", func(c *Client) error { _, err := c.SetRoot(ctx, "/srv"); return err }, "PUT", "/api/root", "Bearer tok"},
		{"create root", func(c *Client) error { _, err := c.CreateRoot(ctx, "/srv"); return err }, "POST", "/api/root/create", "Bearer tok"},
		{"metrics", func(c *Client) error { _, err := c.Metrics(ctx); return err }, "GET", "/api/metrics", "Bearer tok"},
		{"reset metrics", func(c *Client) error { return c.ResetMetrics(ctx) }, "POST", "/api/metrics/reset", "Bearer tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, got := newAdminServer(t, http.StatusOK, "")
			if err := tt.call(client); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if got.method != tt.wantMethod {
				t.Errorf("method = %q, want %q", got.method, tt.wantMethod)
			}
			if got.uri != tt.wantURI {
				t.Errorf("uri = %q, want %q", got.uri, tt.wantURI)
			}
			if got.auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got.auth, tt.wantAuth)
			}
		})
	}
}

func TestBootstrapDecodesResult(t *testing.T) {
	client, got := newAdminServer(t, http.StatusOK, `{"ok":true,"restartRequired":true,"ftpRoot":"/srv/ftp","configPath":"/etc/ftp.json"}`)

	res, err := client.Bootstrap(context.Background(), BootstrapRequest{Token: "secret", FtpRoot: "/srv/ftp"})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !res.OK || !res.RestartRequired || res.FtpRoot != "/srv/ftp" || res.ConfigPath != "/etc/ftp.json" {
		t.Errorf("Bootstrap() = %+v", res)
	}
	if got.body["token"] != "secret" || got.body["ftpRoot"] != "/srv/ftp" {
		t.Errorf("request body = %v", got.body)
	}
}

func TestListUsersDecodes(t *testing.T) {
	client, _ := newAdminServer(t, http.StatusOK, `[{"username":"alice","enabled":true,"rateLimit":2048},{"username":"bob","enabled":false}]`)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].RateLimit == nil || *users[0].RateLimit != 2048 {
		t.Errorf("users[0].RateLimit = %v", users[0].RateLimit)
	}
	if users[1].RateLimit != nil {
		t.Error("users[1].RateLimit should be nil")
	}
}

func TestUpdateUserNilRateLimitOmitted(t *testing.T) {
	client, got := newAdminServer(t, http.StatusNoContent, "")

	if err := client.UpdateUser(context.Background(), "bob", UserUpdate{Enabled: false}); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, ok := got.body["rateLimit"]; ok {
		t.Error("rateLimit should be omitted when nil")
	}
	if got.body["enabled"] != false {
		t.Errorf("enabled = %v", got.body["enabled"])
	}
}

func TestGetUserPermissionsFillsUsername(t *testing.T) {
	client, _ := newAdminServer(t, http.StatusOK, `{"read":true,"write":false,"execute":true}`)

	p, err := client.GetUserPermissions(context.Background(), "carol")
	if err != nil {
		t.Fatalf("GetUserPermissions() error = %v", err)
	}
	if p.Username != "carol" || !p.Read || p.Write || !p.Execute {
		t.Errorf("GetUserPermissions() = %+v", p)
	}
}

func TestFolderPermissionsDecode(t *testing.T) {
	client, _ := newAdminServer(t, http.StatusOK, `[{"folder":"/","read":true,"write":false,"execute":false},{"folder":"/pub","read":true,"write":true,"execute":true}]`)

	perms, err := client.FolderPermissions(context.Background(), "bob")
	if err != nil {
		t.Fatalf("FolderPermissions() error = %v", err)
	}
	want := []FolderPermission{
		{Folder: "/", Read: true},
		{Folder: "/pub", Read: true, Write: true, Execute: true},
	}
	if len(perms) != len(want) {
		t.Fatalf("FolderPermissions() = %+v", perms)
	}
	for i := range want {
		if perms[i] != want[i] {
			t.Errorf("perms[%d] = %+v, want %+v", i, perms[i], want[i])
		}
	}
}

func TestSaveFolderPermissionBody(t *testing.T) {
	client, got := newAdminServer(t, http.StatusNoContent, "")

	err := client.SaveFolderPermission(context.Background(), "bob", FolderPermission{Folder: "/pub", Read: true, Execute: true})
	if err != nil {
		t.Fatalf("SaveFolderPermission() error = %v", err)
	}
	want := map[string]any{"user": "bob", "folder": "/pub", "r": true, "w": false, "e": true}
	for k, v := range want {
		if got.body[k] != v {
			t.Errorf("body[%q] = %v, want %v", k, got.body[k], v)
		}
	}
}

func TestRawEndpointsReturnJSON(t *testing.T) {
	client, _ := newAdminServer(t, http.StatusOK, `{"LIST":{"count":3}}`)

	v, err := client.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("Metrics() = %T, want map", v)
	}
	if _, ok := m["LIST"]; !ok {
		t.Errorf("Metrics() = %v", m)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.in); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
