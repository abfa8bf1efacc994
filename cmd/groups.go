package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/geonet-ops/portal-admin-services/api/portal"
	"github.com/geonet-ops/portal-admin-services/models"
)

var (
	groupSearchMax int
	groupCreate    models.GroupCreate
	groupPatch     models.GroupPatch
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage portal groups",
}

var groupsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search portal groups",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		q := ""
		if len(args) == 1 {
			q = args[0]
		}
		groups, err := newPortalClient().SearchGroups(q, &portal.SearchOptions{Max: groupSearchMax}).All(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("group search failed")
		}
		printJSON(groups)
	},
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <group-id>",
	Short: "Show a single group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		group, err := newPortalClient().GetGroup(context.Background(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch group")
		}
		printJSON(group)
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group",
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		group, err := newPortalClient().CreateGroup(context.Background(), groupCreate)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create group")
		}
		printJSON(group)
	},
}

var groupsUpdateCmd = &cobra.Command{
	Use:   "update <group-id>",
	Short: "Update fields on an existing group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		group, err := newPortalClient().UpdateGroup(context.Background(), args[0], groupPatch)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to update group")
		}
		printJSON(group)
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		if err := newPortalClient().DeleteGroup(context.Background(), args[0]); err != nil {
			log.Fatal().Err(err).Msg("failed to delete group")
		}
	},
}

var groupsAddUsersCmd = &cobra.Command{
	Use:   "add-users <group-id> <username>...",
	Short: "Add users to a group",
	Long:  `Add users to a group. Partial failures are reported per username, not as an error.`,
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		result, err := newPortalClient().AddGroupUsers(context.Background(), args[0], args[1:])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to add users to group")
		}
		printJSON(result)
	},
}

var groupsRemoveUsersCmd = &cobra.Command{
	Use:   "remove-users <group-id> <username>...",
	Short: "Remove users from a group",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		result, err := newPortalClient().RemoveGroupUsers(context.Background(), args[0], args[1:])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to remove users from group")
		}
		printJSON(result)
	},
}

var groupsMembersCmd = &cobra.Command{
	Use:   "members <group-id>",
	Short: "List the owner, admins and members of a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		members, err := newPortalClient().GroupMembers(context.Background(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch group members")
		}
		printJSON(members)
	},
}

func init() {
	groupsSearchCmd.Flags().IntVar(&groupSearchMax, "max", 0, "maximum number of results (0 = all)")

	groupsCreateCmd.Flags().StringVar(&groupCreate.Title, "title", "", "group title")
	groupsCreateCmd.Flags().StringSliceVar(&groupCreate.Tags, "tags", nil, "tags for the group")
	groupsCreateCmd.Flags().StringVar(&groupCreate.Description, "description", "", "group description")
	groupsCreateCmd.Flags().StringVar(&groupCreate.Access, "access", "private", "access level (private, org, public)")
	_ = groupsCreateCmd.MarkFlagRequired("title")

	groupsUpdateCmd.Flags().StringVar(&groupPatch.Title, "title", "", "new title")
	groupsUpdateCmd.Flags().StringVar(&groupPatch.Description, "description", "", "new description")
	groupsUpdateCmd.Flags().StringVar(&groupPatch.Access, "access", "", "new access level (private, org, public)")
	groupsUpdateCmd.Flags().StringSliceVar(&groupPatch.Tags, "tags", nil, "new tags")

	groupsCmd.AddCommand(groupsSearchCmd, groupsGetCmd, groupsCreateCmd,
		groupsUpdateCmd, groupsDeleteCmd, groupsAddUsersCmd,
		groupsRemoveUsersCmd, groupsMembersCmd)
	rootCmd.AddCommand(groupsCmd)
}
