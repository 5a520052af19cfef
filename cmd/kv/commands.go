package kv

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [family] [key] [value]",
		Short: "Sets the value for a key in a column family",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Put(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [family] [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcStore.Get(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("family=%s, key=%s, value=%s\n", args[0], args[1], value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [family] [key]",
		Short: "Deletes a key value pair and prints the removed value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcStore.Delete(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("deleted family=%s, key=%s, value=%s\n", args[0], args[1], value)
			return nil
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan [family] [startKey] [limit]",
		Short: "Lists up to limit pairs with a key >= startKey in ascending order",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.Atoi(args[2])
			if err != nil {
				return errors.Wrap(err, "limit must be a number")
			}
			pairs, err := rpcStore.Scan(args[0], args[1], limit)
			if err != nil {
				return err
			}
			for _, pair := range pairs {
				fmt.Println(pair.String())
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints statistics about the store of the shard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcStore.Info()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)
