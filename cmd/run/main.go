// Command run samples measurement shots from a GHZ circuit and records
// the observed bitstrings into a sqlite database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fumin/qcircuit"
	"github.com/fumin/qcircuit/gate"
	"github.com/fumin/qcircuit/topology"
)

const tableShots = "shots"

var (
	configPath = flag.String("c", "config.yaml", "experiment config file")
)

type Config struct {
	// Topology is "chain", "ring", "alltoall" or "ibmq53".
	Topology string `yaml:"topology"`
	// Sites is the number of qubits, ignored for ibmq53.
	Sites  int     `yaml:"sites"`
	Shots  int     `yaml:"shots"`
	Cutoff float64 `yaml:"cutoff"`
	MaxDim int     `yaml:"maxDim"`
	DB     string  `yaml:"db"`
}

func readConfig(fpath string) (Config, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	cfg := Config{Topology: "chain", Sites: 8, Shots: 128, Cutoff: 1e-5, DB: "shots.db"}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	if cfg.Sites < 2 {
		return Config{}, errors.Errorf("%d sites", cfg.Sites)
	}
	return cfg, nil
}

func newTopology(cfg Config) (*topology.Topology, error) {
	switch cfg.Topology {
	case "chain":
		return topology.Chain(cfg.Sites, false), nil
	case "ring":
		return topology.Chain(cfg.Sites, true), nil
	case "alltoall":
		return topology.AllToAll(cfg.Sites), nil
	case "ibmq53":
		return topology.IBMQ53(), nil
	default:
		return nil, errors.Errorf("unknown topology %q", cfg.Topology)
	}
}

// sample prepares a GHZ state and measures every qubit.
func sample(topo *topology.Topology, opt qcircuit.Options) (string, error) {
	c, err := qcircuit.New(topo, qcircuit.ZeroState(topo.NumBits()))
	if err != nil {
		return "", errors.Wrap(err, "")
	}

	if err := c.Apply(gate.H(0), opt); err != nil {
		return "", errors.Wrap(err, "")
	}
	for i := 0; i < topo.NumBits()-1; i++ {
		if err := c.ApplyTwo(gate.CNOT(i, i+1), opt); err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("%d", i))
		}
	}

	var b strings.Builder
	for i := 0; i < topo.NumBits(); i++ {
		bit, err := c.Observe(i, opt)
		if err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		fmt.Fprintf(&b, "%d", bit)
	}
	return b.String(), nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (shot INTEGER, bits TEXT, PRIMARY KEY (shot)) STRICT`, tableShots)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func record(ctx context.Context, db *sql.DB, shot int, bits string) error {
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (shot, bits) VALUES (?, ?)`, tableShots)
	if _, err := db.ExecContext(ctx, sqlStr, shot, bits); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%d %s", shot, bits))
	}
	return nil
}

func run(cfg Config) error {
	topo, err := newTopology(cfg)
	if err != nil {
		return errors.Wrap(err, "")
	}
	opt := qcircuit.NewOptions().Cutoff(cfg.Cutoff).MaxDim(cfg.MaxDim)

	db, err := newDB(cfg.DB)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()
	ctx := context.Background()

	counts := make(map[string]int)
	for shot := 0; shot < cfg.Shots; shot++ {
		bits, err := sample(topo, opt)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("shot %d", shot))
		}
		if err := record(ctx, db, shot, bits); err != nil {
			return errors.Wrap(err, "")
		}
		counts[bits]++
	}

	for bits, n := range counts {
		log.Printf("%s %d/%d", bits, n, cfg.Shots)
	}
	return nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg, err := readConfig(*configPath)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("%+v", err)
	}
}
