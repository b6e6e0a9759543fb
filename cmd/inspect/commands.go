package main

import (
	"alumni-net/domain"
	"alumni-net/repositories"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

func usersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every user with role and connection count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInspector(opts)
			if err != nil {
				return err
			}
			defer in.Close()

			users, err := in.users.ListUsers(context.Background())
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Email", "Role", "Connections", "Created")
			for _, u := range users {
				table.Append([]string{
					string(u.ID),
					u.Profile.Name,
					u.Email,
					string(u.Profile.Role()),
					strconv.Itoa(len(u.Connections)),
					u.CreatedAt.Format(timeLayout),
				})
			}
			table.Render()
			color.Gray.Printf("%d users\n", len(users))
			return nil
		},
	}
}

func conversationsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "conversations <user>",
		Short: "List the conversations of a user, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseUserID(args[0])
			if err != nil {
				return err
			}
			in, err := openInspector(opts)
			if err != nil {
				return err
			}
			defer in.Close()

			views, err := in.messaging.ConversationsFor(context.Background(), id)
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "Conversation", "With", "Last message", "Unread")
			for _, v := range views {
				unread := strconv.Itoa(v.Unread)
				if v.Unread > 0 {
					unread = color.Yellow.Sprint(unread)
				}
				table.Append([]string{
					v.Conversation.ID.String(),
					fmt.Sprintf("%s (%s)", v.Other.Name, v.Other.ID),
					v.Conversation.LastMessageAt.Format(timeLayout),
					unread,
				})
			}
			table.Render()
			return nil
		},
	}
}

func messagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <user> <user>",
		Short: "Print the messages exchanged by two users, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := domain.ParseUserID(args[0])
			if err != nil {
				return err
			}
			b, err := domain.ParseUserID(args[1])
			if err != nil {
				return err
			}
			in, err := openInspector(opts)
			if err != nil {
				return err
			}
			defer in.Close()

			messages, err := in.messaging.MessagesBetween(context.Background(), a, b)
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "Seq", "At", "From", "To", "Read", "Lang", "Content")
			for _, m := range messages {
				read := color.Green.Sprint("yes")
				if !m.Read {
					read = color.Yellow.Sprint("no")
				}
				table.Append([]string{
					strconv.FormatUint(m.Seq, 10),
					m.At.Format(timeLayout),
					string(m.SenderID),
					string(m.ReceiverID),
					read,
					m.Language,
					m.Content,
				})
			}
			table.Render()
			return nil
		},
	}
}

func checkGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-graph",
		Short: "Verify that every connection is recorded on both sides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInspector(opts)
			if err != nil {
				return err
			}
			defer in.Close()

			broken, err := in.connections.CheckGraph(context.Background())
			if err != nil {
				return err
			}
			if len(broken) == 0 {
				color.Green.Println("Connection graph is symmetric")
				return nil
			}
			for _, edge := range broken {
				color.Red.Printf("%s lists %s, not the other way around\n", edge.From, edge.To)
			}
			return fmt.Errorf("%d one-sided edges", len(broken))
		},
	}
}

func dumpCmd(opts *options) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump raw store entries under a key prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInspector(opts)
			if err != nil {
				return err
			}
			defer in.Close()

			table := newTable(cmd.OutOrStdout(), "Key", "Type", "Detail")
			err = in.db.View(func(txn *badger.Txn) error {
				it := txn.NewIterator(badger.DefaultIteratorOptions)
				defer it.Close()
				p := []byte(prefix)
				for it.Seek(p); it.ValidForPrefix(p); it.Next() {
					item := it.Item()
					key := string(item.Key())
					if err := item.Value(func(val []byte) error {
						kind, detail, err := repositories.Describe(key, val)
						if err != nil {
							detail = color.Red.Sprintf("decode failed: %v", err)
						}
						table.Append([]string{key, kind, strings.TrimSpace(detail)})
						return nil
					}); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix to scan (user:, msg:, conv:, idx:)")
	return cmd
}
