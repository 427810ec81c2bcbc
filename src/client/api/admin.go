package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Client wraps a Transport with the ftp-server admin endpoints
type Client struct {
	transport *Transport
}

// NewClient creates an admin API client over t
func NewClient(t *Transport) *Client {
	return &Client{transport: t}
}

// Transport returns the underlying transport
func (c *Client) Transport() *Transport {
	return c.transport
}

// AdminTokenStatus is the response of GET /api/admin-token
type AdminTokenStatus struct {
	TokenSet bool `json:"tokenSet"`
}

// BootstrapHint is the response of GET /api/bootstrap
type BootstrapHint struct {
	SuggestedFtpRoot string `json:"suggestedFtpRoot,omitempty"`
}

// BootstrapRequest is the first-run setup payload
type BootstrapRequest struct {
	Token   string `json:"token"`
	FtpRoot string `json:"ftpRoot"`
}

// BootstrapResult is returned by PUT /api/bootstrap and the root config endpoints
type BootstrapResult struct {
	OK              bool   `json:"ok"`
	RestartRequired bool   `json:"restartRequired"`
	FtpRoot         string `json:"ftpRoot,omitempty"`
	ConfigPath      string `json:"configPath,omitempty"`
}

// User is a row of GET /api/users
type User struct {
	Username  string `json:"username"`
	Enabled   bool   `json:"enabled"`
	RateLimit *int64 `json:"rateLimit,omitempty"`
}

// UserUpdate is the body of PUT /api/users/{name}. A nil RateLimit means "use server limit".
type UserUpdate struct {
	Enabled   bool   `json:"enabled"`
	RateLimit *int64 `json:"rateLimit,omitempty"`
}

// Permissions are the global R/W/E flags of a user
type Permissions struct {
	Username string `json:"username,omitempty"`
	Read     bool   `json:"read"`
	Write    bool   `json:"write"`
	Execute  bool   `json:"execute"`
}

// Limits are the global server limits
type Limits struct {
	GlobalMaxConnections int   `json:"globalMaxConnections"`
	GlobalRateLimit      int64 `json:"globalRateLimit"`
	GlobalUploadLimit    int64 `json:"globalUploadLimit,omitempty"`
	GlobalDownloadLimit  int64 `json:"globalDownloadLimit,omitempty"`
}

// UserStats is one row of the live stats
type UserStats struct {
	Username        string `json:"username"`
	Connected       bool   `json:"connected"`
	Connections     int    `json:"connections"`
	BytesUploaded   int64  `json:"bytesUploaded"`
	BytesDownloaded int64  `json:"bytesDownloaded"`
	LastLogin       string `json:"lastLogin"`
}

// LiveStats is the response of GET /api/stats/live
type LiveStats struct {
	ConnectedUsers   int         `json:"connectedUsers"`
	TotalConnections int         `json:"totalConnections"`
	Users            []UserStats `json:"users"`
}

// FolderPermission is the R/W/E grant of a user on one folder
type FolderPermission struct {
	Folder  string `json:"folder"`
	Read    bool   `json:"read"`
	Write   bool   `json:"write"`
	Execute bool   `json:"execute"`
}

// folderPermissionSave is the body of POST /api/folders/permissions/save
type folderPermissionSave struct {
	User    string `json:"user"`
	Folder  string `json:"folder"`
	Read    bool   `json:"r"`
	Write   bool   `json:"w"`
	Execute bool   `json:"e"`
}

// SharedFolder is a folder one user shared with another
type SharedFolder struct {
	ID                  int64  `json:"id,omitempty"`
	FolderName          string `json:"folderName"`
	FolderPath          string `json:"folderPath"`
	OwnerUsername       string `json:"ownerUsername"`
	UserToShareUsername string `json:"userToShareUsername"`
	Read                bool   `json:"read"`
	Write               bool   `json:"write"`
	Execute             bool   `json:"execute"`
}

// RootInfo describes the current ftp-root on the server
type RootInfo struct {
	CurrentFtpRoot string `json:"currentFtpRoot"`
	CurrentDbPath  string `json:"currentDbPath"`
	SharedPath     string `json:"sharedPath,omitempty"`
	UsersPath      string `json:"usersPath,omitempty"`
	ConfigPath     string `json:"configPath,omitempty"`
	DbExists       bool   `json:"dbExists"`
	SharedExists   bool   `json:"sharedExists"`
	UsersExists    bool   `json:"usersExists"`
}

// ====== TOKEN & BOOTSTRAP (no auth) ======

// AdminTokenStatus reports whether an admin token is configured
func (c *Client) AdminTokenStatus(ctx context.Context) (*AdminTokenStatus, error) {
	var st AdminTokenStatus
	if err := c.getNoAuth(ctx, "/api/admin-token", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetAdminToken sets or rotates the admin token
func (c *Client) SetAdminToken(ctx context.Context, token string) error {
	_, err := c.transport.Request(ctx, http.MethodPut, "/api/admin-token", map[string]string{"token": token}, false)
	return err
}

// BootstrapInfo fetches the first-run hint
func (c *Client) BootstrapInfo(ctx context.Context) (*BootstrapHint, error) {
	var hint BootstrapHint
	if err := c.getNoAuth(ctx, "/api/bootstrap", &hint); err != nil {
		return nil, err
	}
	return &hint, nil
}

// Bootstrap performs first-run setup of the admin token and ftp-root
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResult, error) {
	body, err := c.transport.Request(ctx, http.MethodPut, "/api/bootstrap", req, false)
	if err != nil {
		return nil, err
	}
	var res BootstrapResult
	if err := body.Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ====== USERS ======

// ListUsers lists all FTP users
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser gets user details
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var u User
	if err := c.get(ctx, "/api/users/"+url.PathEscape(username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new FTP user
func (c *Client) CreateUser(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	return c.send(ctx, http.MethodPost, "/api/users", body)
}

// UpdateUser enables/disables a user and sets its rate limit
func (c *Client) UpdateUser(ctx context.Context, username string, upd UserUpdate) error {
	return c.send(ctx, http.MethodPut, "/api/users/"+url.PathEscape(username), upd)
}

// DeleteUser deletes a user
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.send(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(username), nil)
}

// ====== PERMISSIONS ======

// GetUserPermissions gets the global permissions of a user
func (c *Client) GetUserPermissions(ctx context.Context, username string) (*Permissions, error) {
	var p Permissions
	if err := c.get(ctx, "/api/user-permissions?user="+url.QueryEscape(username), &p); err != nil {
		return nil, err
	}
	if p.Username == "" {
		p.Username = username
	}
	return &p, nil
}

// SaveUserPermissions saves the global permissions of a user
func (c *Client) SaveUserPermissions(ctx context.Context, p Permissions) error {
	return c.send(ctx, http.MethodPost, "/api/user-permissions", p)
}

// ====== LIMITS ======

// GetLimits gets the global server limits
func (c *Client) GetLimits(ctx context.Context) (*Limits, error) {
	var l Limits
	if err := c.get(ctx, "/api/limits", &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SetLimits applies global server limits
func (c *Client) SetLimits(ctx context.Context, l Limits) error {
	return c.send(ctx, http.MethodPut, "/api/limits", l)
}

// ====== STATS ======

// Stats gets the accumulated per-user stats
func (c *Client) Stats(ctx context.Context) (any, error) {
	return c.raw(ctx, "/api/stats")
}

// LiveStats gets live connections and traffic
func (c *Client) LiveStats(ctx context.Context) (*LiveStats, error) {
	var s LiveStats
	if err := c.get(ctx, "/api/stats/live", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ====== FOLDERS ======

// Folders lists the folders of a user
func (c *Client) Folders(ctx context.Context, username string) (any, error) {
	return c.raw(ctx, "/api/folders?user="+url.QueryEscape(username))
}

// FolderPermissions lists the per-folder grants of a user
func (c *Client) FolderPermissions(ctx context.Context, username string) ([]FolderPermission, error) {
	var out []FolderPermission
	if err := c.get(ctx, "/api/folders/permissions?username="+url.QueryEscape(username), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFolderPermission sets the grant of username on p.Folder
func (c *Client) SaveFolderPermission(ctx context.Context, username string, p FolderPermission) error {
	body := folderPermissionSave{
		User:    username,
		Folder:  p.Folder,
		Read:    p.Read,
		Write:   p.Write,
		Execute: p.Execute,
	}
	return c.send(ctx, http.MethodPost, "/api/folders/permissions/save", body)
}

// SharedFolders lists folders other users shared with username
func (c *Client) SharedFolders(ctx context.Context, username string) ([]SharedFolder, error) {
	var out []SharedFolder
	if err := c.get(ctx, "/api/shared-folders?username="+url.QueryEscape(username), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShareFolder shares a folder of one user with another
func (c *Client) ShareFolder(ctx context.Context, f SharedFolder) error {
	return c.send(ctx, http.MethodPost, "/api/shared-folders/share", f)
}

// DeleteSharedFolder removes all share entries for folderPath
func (c *Client) DeleteSharedFolder(ctx context.Context, folderPath string) error {
	return c.send(ctx, http.MethodDelete, "/api/shared-folders/delete?folderPath="+url.QueryEscape(folderPath), nil)
}

// ====== ROOT ======

// GetRoot describes the current ftp-root
func (c *Client) GetRoot(ctx context.Context) (*RootInfo, error) {
	var r RootInfo
	if err := c.get(ctx, "/api/root", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetRoot points the server at an existing ftp-root (applied after restart)
func (c *Client) SetRoot(ctx context.Context, ftpRoot string) (*BootstrapResult, error) {
	return c.rootChange(ctx, http.MethodPut, "/api/root", ftpRoot)
}

// CreateRoot creates and selects a new ftp-root (applied after restart)
func (c *Client) CreateRoot(ctx context.Context, ftpRoot string) (*BootstrapResult, error) {
	return c.rootChange(ctx, http.MethodPost, "/api/root/create", ftpRoot)
}

// ====== METRICS ======

// Metrics gets the server command metrics
func (c *Client) Metrics(ctx context.Context) (any, error) {
	return c.raw(ctx, "/api/metrics")
}

// ResetMetrics clears the server command metrics
func (c *Client) ResetMetrics(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/api/metrics/reset", nil)
}

// ====== HTTP HELPERS ======

func (c *Client) rootChange(ctx context.Context, method, path, ftpRoot string) (*BootstrapResult, error) {
	body, err := c.transport.Request(ctx, method, path, map[string]string{"ftpRoot": ftpRoot}, true)
	if err != nil {
		return nil, err
	}
	var res BootstrapResult
	if err := body.Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	body, err := c.transport.Request(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	return body.Decode(v)
}

func (c *Client) getNoAuth(ctx context.Context, path string, v any) error {
	body, err := c.transport.Request(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	return body.Decode(v)
}

func (c *Client) raw(ctx context.Context, path string) (any, error) {
	body, err := c.transport.Request(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	if body.IsJSON() {
		return body.JSON, nil
	}
	return body.Text, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) error {
	_, err := c.transport.Request(ctx, method, path, body, true)
	return err
}

// FormatBytes renders a byte count as B, KB, MB or GB
func FormatBytes(n int64) string {
	v := float64(n)
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	kb := v / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.1f KB", kb)
	}
	mb := kb / 1024
	if mb < 1024 {
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.2f GB", mb/1024)
}
