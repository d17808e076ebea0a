// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2017 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command segmenter is the reference CLI surface (spec §6.3): it reads
// raw text lines from stdin, predicts word boundaries (and, optionally,
// per-token tags) with a trained model, and writes tokenized text to
// stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/kobun-nlp/vaporetto/cnf"
	"github.com/kobun-nlp/vaporetto/fs"
	"github.com/kobun-nlp/vaporetto/model"
	"github.com/kobun-nlp/vaporetto/predictor"
	"github.com/kobun-nlp/vaporetto/sentence"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
	"github.com/kobun-nlp/vaporetto/wsconst"
)

const version = "0.1.0"

func exitCode(err error) int {
	kind, ok := vaporettoerr.KindOf(err)
	if !ok {
		return 2
	}
	switch kind {
	case vaporettoerr.InvalidModel:
		return 1
	case vaporettoerr.Io:
		return 3
	default:
		return 2
	}
}

func parseWsconst(spec string) ([]wsconst.Kind, error) {
	var kinds []wsconst.Kind
	for _, r := range spec {
		switch r {
		case 'D':
			kinds = append(kinds, wsconst.KindDigit)
		case 'R':
			kinds = append(kinds, wsconst.KindRoman)
		case 'H':
			kinds = append(kinds, wsconst.KindHiragana)
		case 'T':
			kinds = append(kinds, wsconst.KindKatakana)
		case 'K':
			kinds = append(kinds, wsconst.KindKanji)
		case 'O':
			kinds = append(kinds, wsconst.KindOther)
		case 'G':
			kinds = append(kinds, wsconst.KindGraphemeCluster)
		default:
			return nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "unknown --wsconst code %q", r)
		}
	}
	return kinds, nil
}

func main() {
	flag.Usage = func() {
		baseHdrRow := "+-------------------------------------------------------------+"
		fmt.Printf("\n%s\n", baseHdrRow)
		fmt.Println("|   segmenter - pointwise word-boundary & tag prediction CLI   |")
		fmt.Printf("|                     version %s                          |\n", version)
		fmt.Println(baseHdrRow)
		fmt.Println("\nUsage:")
		fmt.Println("segmenter --model PATH [flags] < input.txt > output.txt")
		flag.PrintDefaults()
	}

	confPath := flag.String("conf", "", "load options from a cnf.RunConfig JSON file")
	modelPath := flag.String("model", "", "path to a trained binary model")
	predictTags := flag.Bool("predict-tags", false, "also predict per-token tags")
	wsconstSpec := flag.String("wsconst", "", "word-shape boundary constraints to apply (subset of DRHTKOG)")
	noNorm := flag.Bool("no-norm", false, "accepted for compatibility; normalization is not performed by this module")
	scores := flag.Bool("scores", false, "dump the per-boundary score array as JSON to stderr")
	bufferedOut := flag.Bool("buffered-out", false, "buffer stdout and flush once at exit")
	flag.Parse()

	conf := &cnf.RunConfig{}
	if *confPath != "" {
		loaded, err := cnf.LoadConf(*confPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to load run configuration")
			os.Exit(3)
		}
		conf = loaded
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["model"] {
		conf.ModelPath = *modelPath
	}
	if set["predict-tags"] {
		conf.PredictTags = *predictTags
	}
	if set["wsconst"] {
		conf.Wsconst = *wsconstSpec
	}
	if set["no-norm"] {
		conf.NoNorm = *noNorm
	}
	if set["scores"] {
		conf.Scores = *scores
	}
	if set["buffered-out"] {
		conf.BufferedOut = *bufferedOut
	}

	if err := conf.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		flag.Usage()
		os.Exit(2)
	}

	kinds, err := parseWsconst(conf.Wsconst)
	if err != nil {
		log.Error().Err(err).Msg("invalid --wsconst value")
		os.Exit(2)
	}
	constraint := wsconst.Constraint{Kinds: kinds}

	if !fs.IsFile(conf.ModelPath) {
		log.Error().Str("path", conf.ModelPath).Msg("model path does not exist or is not a regular file")
		os.Exit(3)
	}

	mf, err := os.Open(conf.ModelPath)
	if err != nil {
		log.Error().Err(err).Str("path", conf.ModelPath).Msg("failed to open model")
		os.Exit(3)
	}
	defer mf.Close()

	m, err := model.Read(mf)
	if err != nil {
		log.Error().Err(err).Msg("failed to read model")
		os.Exit(exitCode(err))
	}

	p, err := predictor.New(m, conf.PredictTags)
	if err != nil {
		log.Error().Err(err).Msg("failed to build predictor")
		os.Exit(exitCode(err))
	}

	var out *bufio.Writer
	if conf.BufferedOut {
		out = bufio.NewWriter(os.Stdout)
		defer out.Flush()
	}

	scanner := bufio.NewScanner(os.Stdin)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			writeLine(out, "")
			continue
		}

		s, err := sentence.FromRaw(line)
		if err != nil {
			log.Error().Err(err).Int("line", lineNo).Msg("failed to parse input line")
			os.Exit(exitCode(err))
		}

		p.Predict(s)
		constraint.Apply(s)
		if err := p.FillTags(s); err != nil {
			log.Error().Err(err).Int("line", lineNo).Msg("failed to predict tags")
			os.Exit(exitCode(err))
		}

		tokenized, err := s.TokenizedString()
		if err != nil {
			log.Error().Err(err).Int("line", lineNo).Msg("failed to render tokenized output")
			os.Exit(exitCode(err))
		}
		writeLine(out, tokenized)

		if conf.Scores {
			padding := p.Padding()
			raw := s.BoundaryScores()
			n := s.NumChars() - 1
			var window []int32
			if n > 0 {
				window = raw[padding : padding+n]
			}
			dump, err := sonic.Marshal(window)
			if err != nil {
				log.Error().Err(err).Int("line", lineNo).Msg("failed to serialize scores")
				os.Exit(2)
			}
			fmt.Fprintf(os.Stderr, "%s\n", dump)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("failed reading stdin")
		os.Exit(3)
	}
}

func writeLine(out *bufio.Writer, line string) {
	if out != nil {
		fmt.Fprintln(out, line)
		return
	}
	fmt.Println(line)
}
