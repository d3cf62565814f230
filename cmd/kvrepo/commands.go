package main

import (
	"errors"
	"fmt"

	"github.com/horockey/kvrepo"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errNotFound = errors.New("key not found")

func (a *app) newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put KEY VALUE",
		Short: "Save value under key",
		Args:  cobra.ExactArgs(2), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(repo *kvrepo.Repository[string, string]) error {
				if _, err := repo.Save(args[0], args[1]).Await(cmd.Context()); err != nil {
					return fmt.Errorf("saving %q: %w", args[0], err)
				}
				return nil
			})
		},
	}
}

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(repo *kvrepo.Repository[string, string]) error {
				res, err := repo.FindByKey(args[0]).Await(cmd.Context())
				if err != nil {
					return fmt.Errorf("finding %q: %w", args[0], err)
				}

				val, found := res.Get()
				if !found {
					return fmt.Errorf("%w: %q", errNotFound, args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), val)
				return nil
			})
		},
	}
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all values in key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepo(func(repo *kvrepo.Repository[string, string]) error {
				vals, err := repo.FindAll().Await(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing: %w", err)
				}

				for _, val := range vals {
					fmt.Fprintln(cmd.OutOrStdout(), val)
				}
				return nil
			})
		},
	}
}

func (a *app) newDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY...",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(repo *kvrepo.Repository[string, string]) error {
				futs := lo.Map(args, func(key string, _ int) *kvrepo.Future[struct{}] {
					return repo.DeleteByKey(key)
				})

				var eg errgroup.Group
				for idx, fut := range futs {
					eg.Go(func() error {
						if _, err := fut.Await(cmd.Context()); err != nil {
							return fmt.Errorf("deleting %q: %w", args[idx], err)
						}
						return nil
					})
				}
				return eg.Wait()
			})
		},
	}
}

func (a *app) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepo(func(repo *kvrepo.Repository[string, string]) error {
				if _, err := repo.DeleteAll().Await(cmd.Context()); err != nil {
					return fmt.Errorf("clearing: %w", err)
				}
				return nil
			})
		},
	}
}
