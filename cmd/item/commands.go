package item

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the JSON value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			var resp json.RawMessage
			found, err := itemStore.GetItem(key, &resp)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, resp=%s\n", key, found, resp)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key, the value must be valid JSON unless --string is given",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			asString, _ := cmd.Flags().GetBool("string")

			var value any = args[1]
			if !asString {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("value is not valid JSON (use --string to store it as a string)")
				}
				value = json.RawMessage(args[1])
			}

			if err := itemStore.SetItem(key, value); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	rmCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Removes the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := itemStore.RemoveItem(args[0]); err != nil {
				return err
			}
			fmt.Println("remove successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a value is stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			found, err := itemStore.HasItem(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, found)
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists the keys of the current namespace and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := itemStore.Keys()
			if err != nil {
				return err
			}
			if len(keys) > 0 {
				fmt.Println(strings.Join(keys, "\n"))
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all items of the namespace, in every version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := itemStore.Clear(); err != nil {
				return err
			}
			fmt.Printf("namespace %s cleared\n", itemStore.Namespace())
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(database.GetInfo(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)

func init() {
	setCmd.Flags().Bool("string", false, "Store the value as a JSON string instead of parsing it")
}
