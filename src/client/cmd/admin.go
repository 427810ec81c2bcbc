package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
)

var (
	// User command flags
	userPassword  string
	userEnabled   bool
	userRateLimit int64
	forceDelete   bool
	// Permission flags, shared by perms set and shared share
	permRead    bool
	permWrite   bool
	permExecute bool
	// Limits flags
	limitMaxConnections int
	limitRate           int64
	limitUpload         int64
	limitDownload       int64
	// Shared folder flags
	shareOwner string
	shareWith  string
	sharePath  string
	shareName  string
	// Stats / metrics flags
	statsLive    bool
	metricsReset bool
)

// ====== USERS ======

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage FTP users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			users, err := c.ListUsers(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), users, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "USERNAME\tENABLED\tRATE LIMIT")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, yesNo(u.Enabled), rateLimitText(u.RateLimit))
				}
			})
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Get user details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			u, err := c.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), u, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
				fmt.Fprintf(tw, "Enabled:\t%s\n", yesNo(u.Enabled))
				fmt.Fprintf(tw, "Rate limit:\t%s\n", rateLimitText(u.RateLimit))
			})
		})
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a new FTP user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userPassword == "" {
			return &api.ValidationError{Field: "password", Message: "--password is required"}
		}
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if err := c.CreateUser(ctx, args[0], userPassword); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("User %s created", args[0]))
		})
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <username>",
	Short: "Enable/disable a user and set its rate limit",
	Long: `Enable/disable a user and set its rate limit in bytes/sec.
A rate limit of 0 means "use the server limit".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			upd := api.UserUpdate{Enabled: userEnabled}
			if !cmd.Flags().Changed("enabled") || !cmd.Flags().Changed("rate-limit") {
				cur, err := c.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				upd = api.UserUpdate{Enabled: cur.Enabled, RateLimit: cur.RateLimit}
				if cmd.Flags().Changed("enabled") {
					upd.Enabled = userEnabled
				}
			}
			if cmd.Flags().Changed("rate-limit") {
				upd.RateLimit = nil
				if userRateLimit > 0 {
					limit := userRateLimit
					upd.RateLimit = &limit
				}
			}
			if err := c.UpdateUser(ctx, args[0], upd); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("User %s updated", args[0]))
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceDelete {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete user %q? Use --force to confirm.\n", args[0])
			return nil
		}
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if err := c.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("User %s deleted", args[0]))
		})
	},
}

// ====== PERMISSIONS ======

var permsCmd = &cobra.Command{
	Use:   "perms",
	Short: "Manage global user permissions",
}

var permsGetCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show the global R/W/E permissions of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			p, err := c.GetUserPermissions(ctx, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), p, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%s\t%s\n", p.Username, rwx(p.Read, p.Write, p.Execute))
			})
		})
	},
}

var permsSetCmd = &cobra.Command{
	Use:   "set <username>",
	Short: "Change the global R/W/E permissions of a user; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			cur, err := c.GetUserPermissions(ctx, args[0])
			if err != nil {
				return err
			}
			p := *cur
			p.Username = args[0]
			applyPermFlags(cmd, &p.Read, &p.Write, &p.Execute)
			if err := c.SaveUserPermissions(ctx, p); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("Permissions of %s set to %s", args[0], rwx(p.Read, p.Write, p.Execute)))
		})
	},
}

// ====== LIMITS ======

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show or change global server limits",
}

var limitsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show global server limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			l, err := c.GetLimits(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), l, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Max connections:\t%d\n", l.GlobalMaxConnections)
				fmt.Fprintf(tw, "Rate limit:\t%s/s\n", api.FormatBytes(l.GlobalRateLimit))
				fmt.Fprintf(tw, "Upload limit:\t%s/s\n", api.FormatBytes(l.GlobalUploadLimit))
				fmt.Fprintf(tw, "Download limit:\t%s/s\n", api.FormatBytes(l.GlobalDownloadLimit))
			})
		})
	},
}

var limitsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change global server limits; unset flags keep their value",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			l, err := c.GetLimits(ctx)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("max-connections") {
				l.GlobalMaxConnections = limitMaxConnections
			}
			if flags.Changed("rate-limit") {
				l.GlobalRateLimit = limitRate
			}
			if flags.Changed("upload-limit") {
				l.GlobalUploadLimit = limitUpload
			}
			if flags.Changed("download-limit") {
				l.GlobalDownloadLimit = limitDownload
			}
			if err := c.SetLimits(ctx, *l); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), "Limits saved")
		})
	},
}

// ====== STATS ======

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-user statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if !statsLive {
				v, err := c.Stats(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), v, nil)
			}
			s, err := c.LiveStats(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Connected users: %d\tConnections: %d\n\n", s.ConnectedUsers, s.TotalConnections)
				fmt.Fprintln(tw, "USER\tONLINE\tCONN\tUPLOADED\tDOWNLOADED\tLAST LOGIN")
				for _, u := range s.Users {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", u.Username, yesNo(u.Connected), u.Connections,
						api.FormatBytes(u.BytesUploaded), api.FormatBytes(u.BytesDownloaded), u.LastLogin)
				}
			})
		})
	},
}

// ====== FOLDERS ======

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Inspect user folders and their permissions",
}

var foldersListCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List the folders of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			v, err := c.Folders(ctx, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, nil)
		})
	},
}

var folderPermsCmd = &cobra.Command{
	Use:   "perms",
	Short: "Manage per-folder permissions of a user",
}

var folderPermsGetCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show the per-folder R/W/E permissions of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			perms, err := c.FolderPermissions(ctx, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), perms, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "FOLDER\tPERMS")
				for _, p := range perms {
					fmt.Fprintf(tw, "%s\t%s\n", p.Folder, rwx(p.Read, p.Write, p.Execute))
				}
			})
		})
	},
}

var folderPermsSetCmd = &cobra.Command{
	Use:   "set <username> <folder>",
	Short: "Change the permissions of a user on one folder; unset flags keep their value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, folder := args[0], args[1]
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			perms, err := c.FolderPermissions(ctx, user)
			if err != nil {
				return err
			}
			p := api.FolderPermission{Folder: folder}
			for _, cur := range perms {
				if cur.Folder == folder {
					p = cur
					break
				}
			}
			applyPermFlags(cmd, &p.Read, &p.Write, &p.Execute)
			if err := c.SaveFolderPermission(ctx, user, p); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("Permissions of %s on %s set to %s", user, folder, rwx(p.Read, p.Write, p.Execute)))
		})
	},
}

// applyPermFlags copies only the --read/--write/--execute flags that were given
func applyPermFlags(cmd *cobra.Command, read, write, execute *bool) {
	flags := cmd.Flags()
	if flags.Changed("read") {
		*read = permRead
	}
	if flags.Changed("write") {
		*write = permWrite
	}
	if flags.Changed("execute") {
		*execute = permExecute
	}
}

var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "Manage shared folders",
}

var sharedListCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List folders shared with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			folders, err := c.SharedFolders(ctx, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), folders, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "NAME\tPATH\tOWNER\tPERMS")
				for _, f := range folders {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.FolderName, f.FolderPath, f.OwnerUsername, rwx(f.Read, f.Write, f.Execute))
				}
			})
		})
	},
}

var sharedShareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share a folder of one user with another",
	RunE: func(cmd *cobra.Command, args []string) error {
		if shareOwner == "" || shareWith == "" || sharePath == "" {
			return &api.ValidationError{Field: "share", Message: "--owner, --with and --path are required"}
		}
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			f := api.SharedFolder{
				FolderName:          shareName,
				FolderPath:          sharePath,
				OwnerUsername:       shareOwner,
				UserToShareUsername: shareWith,
				Read:                permRead,
				Write:               permWrite,
				Execute:             permExecute,
			}
			if f.FolderName == "" {
				f.FolderName = sharePath
			}
			if err := c.ShareFolder(ctx, f); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("Shared %s with %s", sharePath, shareWith))
		})
	},
}

var sharedDeleteCmd = &cobra.Command{
	Use:   "delete <folder-path>",
	Short: "Remove every share entry of a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceDelete {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to unshare %q? Use --force to confirm.\n", args[0])
			return nil
		}
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if err := c.DeleteSharedFolder(ctx, args[0]); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), fmt.Sprintf("Unshared %s", args[0]))
		})
	},
}

// ====== ROOT ======

var rootConfigCmd = &cobra.Command{
	Use:   "root",
	Short: "Show or change the server ftp-root",
}

var rootGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current ftp-root",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			r, err := c.GetRoot(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), r, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "FTP root:\t%s\n", r.CurrentFtpRoot)
				fmt.Fprintf(tw, "Database:\t%s (exists: %s)\n", r.CurrentDbPath, yesNo(r.DbExists))
				if r.UsersPath != "" {
					fmt.Fprintf(tw, "Users:\t%s (exists: %s)\n", r.UsersPath, yesNo(r.UsersExists))
				}
				if r.SharedPath != "" {
					fmt.Fprintf(tw, "Shared:\t%s (exists: %s)\n", r.SharedPath, yesNo(r.SharedExists))
				}
			})
		})
	},
}

var rootSetCmd = &cobra.Command{
	Use:   "set <path>",
	Short: "Point the server at an existing ftp-root (applied after restart)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			res, err := c.SetRoot(ctx, args[0])
			if err != nil {
				return err
			}
			return renderRootChange(cmd, res)
		})
	},
}

var rootCreateCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create and select a new ftp-root (applied after restart)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			res, err := c.CreateRoot(ctx, args[0])
			if err != nil {
				return err
			}
			return renderRootChange(cmd, res)
		})
	},
}

func renderRootChange(cmd *cobra.Command, res *api.BootstrapResult) error {
	return render(cmd.OutOrStdout(), res, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "FTP root:\t%s\n", res.FtpRoot)
		if res.ConfigPath != "" {
			fmt.Fprintf(tw, "Config:\t%s\n", res.ConfigPath)
		}
		if res.RestartRequired {
			fmt.Fprintln(tw, "Restart the server to apply the new ftp-root path.")
		}
	})
}

// ====== METRICS ======

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show or reset FTP command metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if metricsReset {
				if err := c.ResetMetrics(ctx); err != nil {
					return err
				}
				return done(cmd.OutOrStdout(), "Metrics reset")
			}
			v, err := c.Metrics(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, nil)
		})
	},
}

func rateLimitText(limit *int64) string {
	if limit == nil || *limit <= 0 {
		return "server limit"
	}
	return api.FormatBytes(*limit) + "/s"
}

func init() {
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "password for the new user")
	usersUpdateCmd.Flags().BoolVar(&userEnabled, "enabled", true, "enable or disable the user")
	usersUpdateCmd.Flags().Int64Var(&userRateLimit, "rate-limit", 0, "rate limit in bytes/sec (0 = server limit)")
	usersDeleteCmd.Flags().BoolVar(&forceDelete, "force", false, "confirm deletion")
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)

	for _, c := range []*cobra.Command{permsSetCmd, folderPermsSetCmd, sharedShareCmd} {
		c.Flags().BoolVar(&permRead, "read", false, "read permission")
		c.Flags().BoolVar(&permWrite, "write", false, "write permission")
		c.Flags().BoolVar(&permExecute, "execute", false, "execute permission")
	}
	permsCmd.AddCommand(permsGetCmd, permsSetCmd)

	limitsSetCmd.Flags().IntVar(&limitMaxConnections, "max-connections", 0, "global max connections")
	limitsSetCmd.Flags().Int64Var(&limitRate, "rate-limit", 0, "global rate limit in bytes/sec")
	limitsSetCmd.Flags().Int64Var(&limitUpload, "upload-limit", 0, "global upload limit in bytes/sec")
	limitsSetCmd.Flags().Int64Var(&limitDownload, "download-limit", 0, "global download limit in bytes/sec")
	limitsCmd.AddCommand(limitsGetCmd, limitsSetCmd)

	statsCmd.Flags().BoolVar(&statsLive, "live", false, "show live connections and traffic")
	metricsCmd.Flags().BoolVar(&metricsReset, "reset", false, "reset the metrics")

	folderPermsCmd.AddCommand(folderPermsGetCmd, folderPermsSetCmd)
	foldersCmd.AddCommand(foldersListCmd, folderPermsCmd)

	sharedShareCmd.Flags().StringVar(&shareOwner, "owner", "", "owner of the folder")
	sharedShareCmd.Flags().StringVar(&shareWith, "with", "", "user to share with")
	sharedShareCmd.Flags().StringVar(&sharePath, "path", "", "folder path")
	sharedShareCmd.Flags().StringVar(&shareName, "name", "", "display name (default: path)")
	sharedDeleteCmd.Flags().BoolVar(&forceDelete, "force", false, "confirm removal")
	sharedCmd.AddCommand(sharedListCmd, sharedShareCmd, sharedDeleteCmd)

	rootConfigCmd.AddCommand(rootGetCmd, rootSetCmd, rootCreateCmd)

	rootCmd.AddCommand(usersCmd, permsCmd, limitsCmd, statsCmd, foldersCmd, sharedCmd, rootConfigCmd, metricsCmd)
}
