// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/makeprojects/makeprojects/cmd/makeprojects"

func main() {
	cmd.Execute()
}
