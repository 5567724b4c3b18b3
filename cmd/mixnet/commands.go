package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"go.dedis.ch/mixnet/authority/impl/bulletin"
	"go.dedis.ch/mixnet/types"
)

var (
	boardFlag = &cli.StringFlag{
		Name:    "board",
		Aliases: []string{"b"},
		Value:   "board.json",
		Usage:   "path to the bulletin board",
	}
	keyFlag = &cli.StringFlag{
		Name:    "key",
		Aliases: []string{"k"},
		Value:   "key.json",
		Usage:   "path to the key pair of the authority",
	}
	indexFlag = &cli.IntFlag{
		Name:     "index",
		Aliases:  []string{"j"},
		Required: true,
		Usage:    "index of the authority, starting at 0",
	}
)

func (n *node) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init-board",
			Usage: "create an empty bulletin board, optionally with the ballots to mix",
			Flags: []cli.Flag{
				boardFlag,
				&cli.StringFlag{
					Name:  "ballots",
					Usage: "JSON file holding the list of encrypted ballots",
				},
			},
			Action: n.initBoard,
		},
		{
			Name:  "keygen",
			Usage: "generate the key pair of an authority",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Value:   "key.json",
					Usage:   "where to write the key pair",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "overwrite an existing key without asking",
				},
			},
			Action: n.keygen,
		},
		{
			Name:   "publish-key",
			Usage:  "publish the public key share of an authority",
			Flags:  []cli.Flag{boardFlag, keyFlag, indexFlag},
			Action: n.publishKey,
		},
		{
			Name:   "combine",
			Usage:  "print the joint public key of the election",
			Flags:  []cli.Flag{boardFlag},
			Action: n.combine,
		},
		{
			Name:   "check-shuffles",
			Usage:  "verify the shuffles of the other authorities",
			Flags:  []cli.Flag{boardFlag, indexFlag},
			Action: n.checkShuffles,
		},
		{
			Name:   "decrypt",
			Usage:  "publish the partial decryptions of the mixed ballots",
			Flags:  []cli.Flag{boardFlag, keyFlag, indexFlag},
			Action: n.decrypt,
		},
		{
			Name:   "check-decryptions",
			Usage:  "verify the partial decryptions of the other authorities",
			Flags:  []cli.Flag{boardFlag, indexFlag},
			Action: n.checkDecryptions,
		},
		{
			Name:   "tally",
			Usage:  "combine the partial decryptions and print the plaintexts",
			Flags:  []cli.Flag{boardFlag},
			Action: n.tally,
		},
	}
}

func (n *node) initBoard(c *cli.Context) error {
	b := bulletin.New(n.params.Authorities)

	if c.String("ballots") != "" {
		var e []types.Encryption
		err := readJSON(c.String("ballots"), &e)
		if err != nil {
			return err
		}
		b.SetBallots(e)
	}

	log.Info().Str("board", b.ID()).Int("authorities", b.Authorities()).Msg("board created")

	return b.Save(c.String("board"))
}

func (n *node) keygen(c *cli.Context) error {
	out := c.String("out")

	_, err := os.Stat(out)
	if err == nil && !c.Bool("force") {
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%s already exists, overwrite it?", out),
		}

		err = survey.AskOne(prompt, &overwrite)
		if err != nil {
			return xerrors.Errorf("failed to prompt: %v", err)
		}
		if !overwrite {
			return cli.Exit("aborted", 1)
		}
	}

	kp, err := n.authority.GenerateKeyPair(n.params.Group)
	if err != nil {
		return xerrors.Errorf("failed to generate key pair: %v", err)
	}

	return writeJSON(out, kp, 0600)
}

func (n *node) publishKey(c *cli.Context) error {
	var kp types.KeyPair
	err := readJSON(c.String("key"), &kp)
	if err != nil {
		return err
	}

	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	err = b.PublishKey(c.Int("index"), kp.PublicKey)
	if err != nil {
		return err
	}

	return b.Save(c.String("board"))
}

func (n *node) combine(c *cli.Context) error {
	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	pk, err := n.publicKey(b)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, types.EncodeInt(pk.PublicKey))

	return nil
}

func (n *node) checkShuffles(c *cli.Context) error {
	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	pk, err := n.publicKey(b)
	if err != nil {
		return err
	}

	pis, lists, err := b.ShuffleChain()
	if err != nil {
		return err
	}

	ok, err := n.authority.CheckShuffleProofs(pis, b.Ballots(), lists, pk, c.Int("index"))
	if err != nil {
		return xerrors.Errorf("failed to check shuffles: %v", err)
	}

	if !ok {
		return cli.Exit("shuffle chain rejected", 1)
	}

	log.Info().Str("board", b.ID()).Msg("shuffle chain accepted")

	return nil
}

func (n *node) decrypt(c *cli.Context) error {
	var kp types.KeyPair
	err := readJSON(c.String("key"), &kp)
	if err != nil {
		return err
	}

	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	e, err := b.FinalList()
	if err != nil {
		return err
	}

	bPrime, err := n.authority.GetPartialDecryptions(e, kp.PrivateKey)
	if err != nil {
		return xerrors.Errorf("failed to decrypt: %v", err)
	}

	pi, err := n.authority.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime)
	if err != nil {
		return xerrors.Errorf("failed to prove decryption: %v", err)
	}

	err = b.PublishPartials(c.Int("index"), bPrime, pi)
	if err != nil {
		return err
	}

	return b.Save(c.String("board"))
}

func (n *node) checkDecryptions(c *cli.Context) error {
	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	pks, err := b.Keys()
	if err != nil {
		return err
	}

	e, err := b.FinalList()
	if err != nil {
		return err
	}

	bPrimes, pis, err := b.Partials()
	if err != nil {
		return err
	}

	ok, err := n.authority.CheckDecryptionProofs(pis, pks, e, bPrimes, c.Int("index"))
	if err != nil {
		return xerrors.Errorf("failed to check decryptions: %v", err)
	}

	if !ok {
		return cli.Exit("decryption proofs rejected", 1)
	}

	log.Info().Str("board", b.ID()).Msg("decryption proofs accepted")

	return nil
}

func (n *node) tally(c *cli.Context) error {
	b, err := bulletin.Load(c.String("board"))
	if err != nil {
		return err
	}

	e, err := b.FinalList()
	if err != nil {
		return err
	}

	bPrimes, _, err := b.Partials()
	if err != nil {
		return err
	}

	m, err := n.authority.GetDecryptions(e, bPrimes)
	if err != nil {
		return xerrors.Errorf("failed to combine decryptions: %v", err)
	}

	for _, x := range m {
		fmt.Fprintln(c.App.Writer, types.EncodeInt(x))
	}

	return nil
}

// publicKey combines the key shares published on the board.
func (n *node) publicKey(b bulletin.Board) (types.EncryptionPublicKey, error) {
	shares, err := b.Keys()
	if err != nil {
		return types.EncryptionPublicKey{}, err
	}

	pk, err := n.authority.GetPublicKey(shares...)
	if err != nil {
		return types.EncryptionPublicKey{}, xerrors.Errorf("failed to combine keys: %v", err)
	}

	return pk, nil
}

func readJSON(path string, v interface{}) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return xerrors.Errorf("failed to read %s: %v", path, err)
	}

	err = json.Unmarshal(buf, v)
	if err != nil {
		return xerrors.Errorf("failed to decode %s: %v", path, err)
	}

	return nil
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to encode %s: %v", path, err)
	}

	err = os.WriteFile(path, buf, perm)
	if err != nil {
		return xerrors.Errorf("failed to write %s: %v", path, err)
	}

	return nil
}
