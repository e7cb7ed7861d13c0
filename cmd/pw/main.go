package main

import (
	"github.com/pipewright/pipewright/cmd/pw/commands"
	_ "github.com/pipewright/pipewright/cmd/pw/commands/createpipeline"
	_ "github.com/pipewright/pipewright/cmd/pw/commands/deletepipeline"
	_ "github.com/pipewright/pipewright/cmd/pw/commands/listpipelines"
	_ "github.com/pipewright/pipewright/cmd/pw/commands/runpipeline"
	_ "github.com/pipewright/pipewright/cmd/pw/commands/scaffold"
)

func main() {
	commands.Execute()
}
