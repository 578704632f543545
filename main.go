// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/zetup/zetup/cmd/zetup"

func main() {
	cmd.Execute()
}
