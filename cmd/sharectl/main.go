package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/api/sharehandler"
	"github.com/ruteri/share-engine/cmd/flags"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/urfave/cli/v2"
)

var flagFieldName *cli.StringFlag = &cli.StringFlag{
	Name:  "field",
	Usage: "field name recorded in the audit trail",
}

var flagText *cli.BoolFlag = &cli.BoolFlag{
	Name:  "text",
	Usage: "encode the value as text even if it looks like a number",
}

var flagPersist *cli.BoolFlag = &cli.BoolFlag{
	Name:  "persist",
	Usage: "store the resulting record on the server",
}

func client(cCtx *cli.Context) *sharehandler.Client {
	return sharehandler.NewClient(cCtx.String(flags.ServerAddrFlag.Name))
}

// recordRef parses an argument: "@path" reads a record JSON file, "-" reads
// one from stdin, anything else is a stored record id.
func recordRef(arg string) (api.RecordRef, error) {
	var data []byte
	var err error
	switch {
	case arg == "-":
		data, err = io.ReadAll(os.Stdin)
	case strings.HasPrefix(arg, "@"):
		data, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return api.RecordRef{ID: arg}, nil
	}
	if err != nil {
		return api.RecordRef{}, err
	}

	var record interfaces.ShareRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return api.RecordRef{}, fmt.Errorf("could not parse record: %w", err)
	}
	return api.RecordRef{Record: &record}, nil
}

// parseNumber reports whether s is a bare JSON number.
func parseNumber(s string) (json.Number, bool) {
	var v any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || dec.More() {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

func combineRequest(cCtx *cli.Context) (api.CombineRequest, error) {
	req := api.CombineRequest{Store: cCtx.Bool(flagPersist.Name)}
	for _, arg := range cCtx.Args().Slice() {
		ref, err := recordRef(arg)
		if err != nil {
			return req, err
		}
		if ref.Record != nil {
			req.Records = append(req.Records, ref.Record)
		} else {
			req.IDs = append(req.IDs, ref.ID)
		}
	}
	return req, nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func main() {
	app := &cli.App{
		Name:  "sharectl",
		Usage: "Client for the secret sharing engine server",
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
		},
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "split a value into a share record",
				ArgsUsage: "<value>",
				Flags:     []cli.Flag{flagFieldName, flagText, flagPersist},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return fmt.Errorf("expected exactly one value")
					}
					var value any = cCtx.Args().First()
					if n, ok := parseNumber(cCtx.Args().First()); ok && !cCtx.Bool(flagText.Name) {
						value = n
					}

					resp, err := client(cCtx).Encode(cCtx.Context, value, cCtx.String(flagFieldName.Name), cCtx.Bool(flagPersist.Name))
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:      "decode",
				Usage:     "reconstruct the value of a record",
				ArgsUsage: "<id|@file|->",
				Action: func(cCtx *cli.Context) error {
					ref, err := recordRef(cCtx.Args().First())
					if err != nil {
						return err
					}
					value, err := client(cCtx).Decode(cCtx.Context, ref)
					if err != nil {
						return err
					}
					fmt.Println(value.String())
					return nil
				},
			},
			{
				Name:      "equality",
				Usage:     "compare two records",
				ArgsUsage: "<a> <b>",
				Flags:     []cli.Flag{flagPersist},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return fmt.Errorf("expected two records")
					}
					a, err := recordRef(cCtx.Args().Get(0))
					if err != nil {
						return err
					}
					b, err := recordRef(cCtx.Args().Get(1))
					if err != nil {
						return err
					}

					resp, err := client(cCtx).Equality(cCtx.Context, api.EqualityRequest{A: a, B: b, Store: cCtx.Bool(flagPersist.Name)})
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:      "and",
				Usage:     "AND boolean records",
				ArgsUsage: "<record>...",
				Flags:     []cli.Flag{flagPersist},
				Action: func(cCtx *cli.Context) error {
					req, err := combineRequest(cCtx)
					if err != nil {
						return err
					}
					resp, err := client(cCtx).And(cCtx.Context, req)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:      "aggregate",
				Usage:     "sum records",
				ArgsUsage: "<record>...",
				Flags:     []cli.Flag{flagPersist},
				Action: func(cCtx *cli.Context) error {
					req, err := combineRequest(cCtx)
					if err != nil {
						return err
					}
					resp, err := client(cCtx).Aggregate(cCtx.Context, req)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:      "get",
				Usage:     "fetch a stored record",
				ArgsUsage: "<id>",
				Action: func(cCtx *cli.Context) error {
					record, err := client(cCtx).Get(cCtx.Context, cCtx.Args().First())
					if err != nil {
						return err
					}
					return printJSON(record)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a stored record",
				ArgsUsage: "<id>",
				Action: func(cCtx *cli.Context) error {
					return client(cCtx).Delete(cCtx.Context, cCtx.Args().First())
				},
			},
			{
				Name:      "audit",
				Usage:     "show the audit entry of a stored record",
				ArgsUsage: "<id>",
				Action: func(cCtx *cli.Context) error {
					entry, err := client(cCtx).Audit(cCtx.Context, cCtx.Args().First())
					if err != nil {
						return err
					}
					return printJSON(entry)
				},
			},
			{
				Name:      "party",
				Usage:     "show the share one party holds",
				ArgsUsage: "<id> <party>",
				Action: func(cCtx *cli.Context) error {
					party, err := strconv.Atoi(cCtx.Args().Get(1))
					if err != nil {
						return fmt.Errorf("invalid party: %w", err)
					}
					share, err := client(cCtx).PartyView(cCtx.Context, cCtx.Args().First(), party)
					if err != nil {
						return err
					}
					fmt.Println(interfaces.EncodeShareHex(share))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
