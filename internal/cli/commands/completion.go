package commands

import (
	"fmt"
	"os"
	"strings"
)

// Completion provides shell completion scripts for bash and zsh.
// Usage:
//
//	sobel completion           # prints completions for all supported shells
//	sobel completion bash      # prints bash completion
//	sobel completion zsh       # prints zsh completion
func Completion(args []string) error {
	shell := ""
	if len(args) > 0 {
		shell = strings.ToLower(args[0])
	}

	switch shell {
	case "bash":
		printBashCompletion()
		return nil
	case "zsh":
		printZshCompletion()
		return nil
	case "", "all":
		printBashCompletion()
		fmt.Println()
		printZshCompletion()
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown shell: %s (supported: bash, zsh)\n", shell)
		return usageError(fmt.Sprintf("unsupported shell: %s", shell)).WithSuggestion("Usage: sobel completion [bash|zsh]")
	}
}

func printBashCompletion() {
	fmt.Println(`# bash completion for sobel
_sobel_completions()
{
    local cur prev words cword
    _init_completion || return

    local -a commands
    commands=(
        process batch watch doctor completion help version
    )

    case ${COMP_CWORD} in
        1)
            COMPREPLY=( $(compgen -W "${commands[*]}" -- "$cur") $(compgen -f -- "$cur") )
            return ;;
        *)
            case ${COMP_WORDS[1]} in
                process)
                    COMPREPLY=( $(compgen -W "--bin" -- "$cur") $(compgen -f -- "$cur") ) ;;
                batch)
                    COMPREPLY=( $(compgen -W "--bin --pattern --keep-going --dry-run" -- "$cur") $(compgen -d -- "$cur") ) ;;
                watch)
                    COMPREPLY=( $(compgen -W "--bin --pattern --settle" -- "$cur") $(compgen -d -- "$cur") ) ;;
                doctor)
                    COMPREPLY=( $(compgen -W "--verbose --fix --bin" -- "$cur") ) ;;
                completion)
                    COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") ) ;;
                *)
                    COMPREPLY=( $(compgen -W "--verbose --debug" -- "$cur") ) ;;
            esac
            return ;;
    esac
}
complete -F _sobel_completions sobel`)
}

func printZshCompletion() {
	fmt.Println(`#compdef sobel
_sobel() {
  local -a commands
  commands=(
    'process:Run the edge detector on one image'
    'batch:Run the edge detector on a directory of images'
    'watch:Process images as they appear in a directory'
    'doctor:Check the edge detector setup'
    'completion:Generate shell completion scripts'
    'version:Show version'
    'help:Show help'
  )

  _arguments \
    '1: :->cmds' \
    '*:: :->args'

  case $state in
    cmds)
      _describe 'command' commands
      _files
      ;;
    args)
      case $words[1] in
        process)
          _arguments '--bin[edge detector]:file:_files' '*:image:_files'
          ;;
        batch|watch)
          _arguments '--bin[edge detector]:file:_files' '--pattern[file glob]:glob' '*:directory:_files -/'
          ;;
        doctor)
          _values 'options' --verbose --fix --bin
          ;;
        completion)
          _values 'shell' bash zsh
          ;;
        *)
          _message 'arguments'
          ;;
      esac
      ;;
  esac
}
_sobel "$@"`)
}
