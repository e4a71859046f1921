/*
Package ports defines the driven ports (interfaces) for the page generator.

These interfaces decouple the synchronizer from the wiki server, the class
metadata source and the related-page memo, so a run can target Confluence,
an in-memory wiki (dry-run, tests) or a shared cache without code changes.

# Key Interfaces

  - Wiki: page lookup, creation, labels, parent resolution and title search.
  - ClassProvider: resolves a dotted device-class path to its name, docstring and parameters.
  - RelatedCache: memoizes related-page lookups within or across runs.
*/
package ports
