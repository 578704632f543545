// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigParseErrorId
	DependencyMissingId
	VersionConflictId
	PackageMissingId
	InterpreterNotFoundId
	AppConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the Markdown message with the given glamour style name or
// style file path.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# No zetup config found!

The project directory holds none of the config files zetup looks for.

## Lookup order:
1. zetup.cue
2. zetup.ini
3. zetup.cfg
4. zetuprc

## Things you can try:
- Point zetup at the project directory:
~~~
$ zetup --project /path/to/project requires
~~~

- Create a zetup.cue next to your VERSION and requirements.txt:
~~~cue
name:        "mypkg"
description: "What mypkg does"
author:      "Jane Doe <jane@example.com>"
url:         "https://example.com/mypkg"
license:     "MIT"
python: ["3.11", "3.12"]
~~~`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse zetup config!

The project config or one of the files next to it is invalid.

## Common issues:
- A required key is missing (description, author, url, license, python)
- The author is not written as ` + "`Name <email>`" + `
- The VERSION file does not hold a valid version
- A requirements.all.txt file exists; "all" is reserved for the union of all extras

## Things you can try:
- Validate the file:
~~~
$ zetup keywords
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	dependencyMissingIssue = &Issue{
		id: DependencyMissingId,
		mdMsg: `
# Dependency not installed!

A required distribution could not be imported from the Python environment.

## Things you can try:
- Install the project requirements:
~~~
$ pip install -r requirements.txt
~~~

- Check which interpreter and site paths zetup inspects:
~~~
$ zetup config show
~~~

- If the import name differs from the project name, add an import hint:
~~~
pyyaml >= 6 #import yaml
~~~`,
		extLinks: []HttpLink{"https://pip.pypa.io/en/stable/user_guide/"},
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		mdMsg: `
# Version conflict!

An installed distribution does not satisfy a declared requirement, or its
version could not be determined.

## Things you can try:
- Upgrade the offending distribution:
~~~
$ pip install --upgrade 'name>=version'
~~~

- Relax the requirement in requirements.txt
- Run the check without failing on the first conflict:
~~~
$ zetup check --no-strict
~~~`,
	}

	packageMissingIssue = &Issue{
		id: PackageMissingId,
		mdMsg: `
# Package missing!

A package listed in the project config has no __init__.py below the project
directory.

## Things you can try:
- Create the missing __init__.py
- Remove the package from the ` + "`packages`" + ` list`,
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Python interpreter not found!

zetup runs the configured interpreter once to learn its version and site
paths, and the interpreter could not be started.

## Things you can try:
- Install Python 3 and make sure it is in your PATH
- Configure the interpreter explicitly:
~~~cue
python: {
	interpreter: "/usr/bin/python3"
}
~~~

- Or skip probing by setting both the version and the site paths:
~~~cue
python: {
	version:    "3.12"
	site_paths: ["/usr/lib/python3/dist-packages"]
}
~~~`,
	}

	appConfigLoadFailedIssue = &Issue{
		id: AppConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The zetup application config could not be loaded.

## Things you can try:
- Show where zetup looks for it:
~~~
$ zetup config path
~~~

- Write a fresh default config:
~~~
$ zetup config init
~~~

- Check ZETUP_* variables in your environment and your project's .env file`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

zetup could not read or write a file it needs.

## Things you can try:
- Check file and directory permissions
- Run zetup from a directory you own
- Write generated files somewhere else by running the command without ` + "`--write`",
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():      configNotFoundIssue,
		configParseErrorIssue.Id():    configParseErrorIssue,
		dependencyMissingIssue.Id():   dependencyMissingIssue,
		versionConflictIssue.Id():     versionConflictIssue,
		packageMissingIssue.Id():      packageMissingIssue,
		interpreterNotFoundIssue.Id(): interpreterNotFoundIssue,
		appConfigLoadFailedIssue.Id(): appConfigLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
