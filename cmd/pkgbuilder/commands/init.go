package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/config"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite an existing file"`
	Recipe string `help:"Write an example recipe to this path instead of a config file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if i.Recipe != "" {
		if err := recipe.InitExample(i.Recipe, i.Force); err != nil {
			return err
		}
		fmt.Printf("wrote example recipe: %s\n", i.Recipe)
		return nil
	}

	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Printf("wrote configuration: %s\n", root.Config)
	return nil
}
