package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/geonet-ops/portal-admin-services/api/portal"
	"github.com/geonet-ops/portal-admin-services/models"
)

var (
	userSearchMax int
	userSearchOrg bool
	userCreate    models.UserCreate
	userPatch     models.UserPatch
	userReassign  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage portal users",
}

var usersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search portal users",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		client := newPortalClient()
		ctx := context.Background()

		q := ""
		if len(args) == 1 {
			q = args[0]
		}
		if userSearchOrg {
			scoped, err := client.ScopeToOrg(ctx, q)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to resolve organization")
			}
			q = scoped
		}

		users, err := client.SearchUsers(q, &portal.SearchOptions{Max: userSearchMax}).All(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("user search failed")
		}
		printJSON(users)
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show a single user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		user, err := newPortalClient().GetUser(context.Background(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch user")
		}
		printJSON(user)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a built-in portal account",
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		user, err := newPortalClient().CreateUser(context.Background(), userCreate)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create user")
		}
		printJSON(user)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <username>",
	Short: "Update fields on an existing user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		user, err := newPortalClient().UpdateUser(context.Background(), args[0], userPatch)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to update user")
		}
		printJSON(user)
	},
}

var usersRoleCmd = &cobra.Command{
	Use:   "role <username> <org_user|org_publisher|org_admin>",
	Short: "Change a user's organization role",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		if err := newPortalClient().UpdateUserRole(context.Background(), args[0], args[1]); err != nil {
			log.Fatal().Err(err).Msg("failed to update role")
		}
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user, optionally reassigning their content first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		client := newPortalClient()
		ctx := context.Background()

		if userReassign != "" {
			if err := client.ReassignUser(ctx, args[0], userReassign); err != nil {
				log.Fatal().Err(err).Msg("failed to reassign content")
			}
		}
		if err := client.DeleteUser(ctx, args[0]); err != nil {
			log.Fatal().Err(err).Msg("failed to delete user")
		}
	},
}

func init() {
	usersSearchCmd.Flags().IntVar(&userSearchMax, "max", 0, "maximum number of results (0 = all)")
	usersSearchCmd.Flags().BoolVar(&userSearchOrg, "org", true, "restrict the search to the organization")

	usersCreateCmd.Flags().StringVar(&userCreate.Username, "username", "", "username for the new account")
	usersCreateCmd.Flags().StringVar(&userCreate.Password, "password", "", "password for the new account")
	usersCreateCmd.Flags().StringVar(&userCreate.FullName, "fullname", "", "full name")
	usersCreateCmd.Flags().StringVar(&userCreate.Email, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&userCreate.Role, "role", "org_user", "organization role")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("password")
	_ = usersCreateCmd.MarkFlagRequired("fullname")
	_ = usersCreateCmd.MarkFlagRequired("email")

	usersUpdateCmd.Flags().StringVar(&userPatch.FullName, "fullname", "", "new full name")
	usersUpdateCmd.Flags().StringVar(&userPatch.Email, "email", "", "new email address")
	usersUpdateCmd.Flags().StringVar(&userPatch.Description, "description", "", "new description")
	usersUpdateCmd.Flags().StringVar(&userPatch.Access, "access", "", "new access level (private, org, public)")

	usersDeleteCmd.Flags().StringVar(&userReassign, "reassign-to", "", "reassign items and groups to this user before deleting")

	usersCmd.AddCommand(usersSearchCmd, usersGetCmd, usersCreateCmd,
		usersUpdateCmd, usersRoleCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
