package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/andreyvit/seqdb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	listCmd.Flags().String("filter", "", WrapString("JSON filter document, e.g. {\"age\":{\"$gt\":30}}"))
	listCmd.Flags().Bool("invert", false, WrapString("List records that do NOT match the filter"))
	countCmd.Flags().String("filter", "", WrapString("JSON filter document"))
	deleteByCmd.Flags().String("filter", "", WrapString("JSON filter document selecting the records to delete"))
	_ = deleteByCmd.MarkFlagRequired("filter")
	statsCmd.Flags().Bool("metrics", false, WrapString("Also print process metrics in Prometheus text format"))
	dumpCmd.Flags().Bool("raw", false, WrapString("Print raw keys and value envelopes instead of decoded records"))

	RootCmd.AddCommand(insertCmd, getCmd, lastCmd, listCmd, countCmd, updateCmd,
		deleteCmd, deleteByCmd, recomputeCmd, collectionsCmd, statsCmd, dumpCmd)
}

var insertCmd = &cobra.Command{
	Use:   "insert [json]...",
	Short: "Insert records and print their ids",
	Args:  cobra.MinimumNArgs(1),
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		items := make([]seqdb.Record, len(args))
		for i, arg := range args {
			rec, err := parseRecord(arg)
			if err != nil {
				return err
			}
			items[i] = rec
		}
		ids, err := coll.InsertIDs(items...)
		for _, id := range ids {
			fmt.Println(id)
		}
		return err
	}),
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print the record with the given id",
	Args:  cobra.ExactArgs(1),
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		rec, err := coll.Get(id)
		if err != nil {
			return err
		}
		return printRecord(rec)
	}),
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the record with the largest id",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		rec, err := coll.Last()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("null")
			return nil
		}
		return printRecord(rec)
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print records in id order, one JSON document per line",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		pred, err := seqdb.ParseFilter(viper.GetString("filter"))
		if err != nil {
			return err
		}
		if viper.GetBool("invert") {
			pred = seqdb.Not(pred)
		}
		var printErr error
		err = coll.Scan(pred, func(rec seqdb.Record) bool {
			printErr = printRecord(rec)
			return printErr == nil
		})
		if err != nil {
			return err
		}
		return printErr
	}),
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of records, optionally matching a filter",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		pred, err := seqdb.ParseFilter(viper.GetString("filter"))
		if err != nil {
			return err
		}
		var n int
		if pred == nil {
			n, err = coll.Count()
		} else {
			err = coll.Scan(pred, func(seqdb.Record) bool {
				n++
				return true
			})
		}
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}),
}

var updateCmd = &cobra.Command{
	Use:   "update [id] [json]",
	Short: "Merge fields into an existing record",
	Args:  cobra.ExactArgs(2),
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		partial, err := parseRecord(args[1])
		if err != nil {
			return err
		}
		return coll.Update(id, partial)
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete the record with the given id",
	Args:  cobra.ExactArgs(1),
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return coll.Delete(id)
	}),
}

var deleteByCmd = &cobra.Command{
	Use:   "delete-by",
	Short: "Delete every record matching --filter and print how many were deleted",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		pred, err := seqdb.ParseFilter(viper.GetString("filter"))
		if err != nil {
			return err
		}
		n, err := coll.DeleteBy(pred)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}),
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Reset the id counter to the largest stored id",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		if err := coll.Recompute(); err != nil {
			return err
		}
		fmt.Println(coll.LastID())
		return nil
	}),
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections of --store",
	Args:  cobra.NoArgs,
	RunE: withRegistry(func(cmd *cobra.Command, args []string) error {
		names, err := registry.Collections(viper.GetString("store"))
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print record count, counter and size of the collection",
	Args:  cobra.NoArgs,
	RunE: withCollection(func(cmd *cobra.Command, args []string) error {
		st, err := coll.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("records:    %d\n", st.Records)
		fmt.Printf("counter:    %d\n", st.Counter)
		fmt.Printf("data size:  %d\n", st.DataSize)
		fmt.Printf("data alloc: %d\n", st.DataAlloc)
		if viper.GetBool("metrics") {
			fmt.Println()
			seqdb.WriteMetrics(os.Stdout)
		}
		return nil
	}),
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every collection of --store with its records",
	Args:  cobra.NoArgs,
	RunE: withRegistry(func(cmd *cobra.Command, args []string) error {
		s, err := registry.Store(viper.GetString("store"))
		if err != nil {
			return err
		}
		flags := seqdb.DumpAll
		if viper.GetBool("raw") {
			flags = seqdb.DumpHeaders | seqdb.DumpRaw | seqdb.DumpStats
		}
		return s.Dump(os.Stdout, flags)
	}),
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be a number: %w", err)
	}
	return id, nil
}

func parseRecord(s string) (seqdb.Record, error) {
	var rec seqdb.Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, fmt.Errorf("invalid record %q: %w", s, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("invalid record %q: not a JSON object", s)
	}
	return rec, nil
}

func printRecord(rec seqdb.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
