package games

import (
	"fmt"
	"sort"

	"iarena/game"
)

// Params carries the optional parameters of the known games. Zero values
// select each game's defaults.
type Params struct {
	Piles   []int `yaml:"piles"`
	Coins   int   `yaml:"coins"`
	MinPlay int   `yaml:"min_play"`
	MaxPlay int   `yaml:"max_play"`
}

var registry = map[string]func(Params) (game.Rules, error){
	"nim": func(p Params) (game.Rules, error) {
		for _, n := range p.Piles {
			if n < 0 {
				return nil, fmt.Errorf("nim pile cannot be negative: %d", n)
			}
		}
		return NewNimRules(p.Piles...), nil
	},
	"coins": func(p Params) (game.Rules, error) {
		coins, minPlay, maxPlay := p.Coins, p.MinPlay, p.MaxPlay
		if coins == 0 {
			coins = 15
		}
		if minPlay == 0 {
			minPlay = 1
		}
		if maxPlay == 0 {
			maxPlay = 3
		}
		if minPlay < 1 || maxPlay < minPlay {
			return nil, fmt.Errorf("invalid coins play range [%d, %d]", minPlay, maxPlay)
		}
		return NewCoinsRules(coins, minPlay, maxPlay), nil
	},
	"tictactoe": func(Params) (game.Rules, error) {
		return NewTicTacToeRules(), nil
	},
}

// New builds the rules of the game registered under name.
func New(name string, params Params) (game.Rules, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown game %q (known: %v)", name, Names())
	}
	return build(params)
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
