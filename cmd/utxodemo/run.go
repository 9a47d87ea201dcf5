package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libutxo-go/auth"
	"github.com/bitfsorg/libutxo-go/config"
	"github.com/bitfsorg/libutxo-go/handler"
	"github.com/bitfsorg/libutxo-go/logging"
	"github.com/bitfsorg/libutxo-go/tx"
	"github.com/bitfsorg/libutxo-go/utxo"
)

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logOut := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New("utxodemo",
		logging.WithWriter(logOut),
		logging.WithLevel(cfg.LogLevel),
		logging.WithPretty(cfg.PrettyLogs),
	)

	return demo(c.App.Writer, logger, c.Bool("chain"), c.Bool("dump"))
}

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	explicit := path != ""
	if !explicit {
		path = config.ConfigPath(config.DefaultDir())
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, config.ErrConfigNotFound) {
			return cfg, err
		}
		cfg = config.DefaultConfig()
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("pretty") {
		cfg.PrettyLogs = c.Bool("pretty")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func demo(out io.Writer, logger logging.Logger, chain, dump bool) error {
	keys := make([]*ec.PrivateKey, 5)
	for i := range keys {
		k, err := ec.NewPrivateKey()
		if err != nil {
			return fmt.Errorf("generate key %d: %w", i, err)
		}
		keys[i] = k
	}

	// Genesis state.
	pool := utxo.NewPool()
	tx1Hash := []byte("transaction1")
	tx2Hash := []byte("transaction2")
	pool.Add(tx.NewOutpoint(tx1Hash, 0), tx.Output{Value: 10, Claimant: auth.Claimant(keys[0])})
	pool.Add(tx.NewOutpoint(tx2Hash, 1), tx.Output{Value: 5, Claimant: auth.Claimant(keys[1])})

	split := tx.New()
	if err := split.AddInput(tx1Hash, 0); err != nil {
		return err
	}
	if err := split.AddOutput(7, auth.Claimant(keys[2])); err != nil {
		return err
	}
	if err := split.AddOutput(3, auth.Claimant(keys[3])); err != nil {
		return err
	}
	signature, err := auth.SignInput(split, 0, keys[0])
	if err != nil {
		return err
	}
	if err := split.Finalize(); err != nil {
		return err
	}

	verifier := auth.NewVerifier()
	fmt.Fprintf(out, "Is transaction valid? %t\n", handler.New(pool, verifier).IsValidTx(split))

	rawMsg, err := split.RawMessageForInput(0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Transaction Hash: %s\n", hex.EncodeToString(split.Hash()))
	fmt.Fprintf(out, "Raw Data To Sign: %s\n", hex.EncodeToString(rawMsg))
	fmt.Fprintf(out, "Signature: %s\n", hex.EncodeToString(signature))

	candidates := []*tx.Transaction{split}
	if chain {
		onward, err := spendOutput(split, 0, keys[2], 6, auth.Claimant(keys[4]))
		if err != nil {
			return err
		}
		candidates = append(candidates, onward)
	}

	h := handler.New(pool, verifier, handler.WithLogger(logger))
	accepted := h.HandleTxs(candidates)

	fmt.Fprintln(out, "Accepted Transactions:")
	for _, t := range accepted {
		fmt.Fprintf(out, "Transaction Hash: %s\n", hex.EncodeToString(t.Hash()))
	}

	final := h.Pool()
	total, err := final.Total()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Pool: %d outputs worth %d\n", final.Len(), total)
	if dump {
		for _, op := range final.All() {
			o, err := final.Get(op)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s -> %s", op, spew.Sdump(o))
		}
	}
	return nil
}

// spendOutput builds a finalized transaction moving value from output index
// of prev, owned by key, to claimant.
func spendOutput(prev *tx.Transaction, index uint32, key *ec.PrivateKey, value uint64, claimant []byte) (*tx.Transaction, error) {
	t := tx.New()
	if err := t.AddInput(prev.Hash(), index); err != nil {
		return nil, err
	}
	if err := t.AddOutput(value, claimant); err != nil {
		return nil, err
	}
	if _, err := auth.SignInput(t, 0, key); err != nil {
		return nil, err
	}
	if err := t.Finalize(); err != nil {
		return nil, err
	}
	return t, nil
}
