/*
Package nexus reads phylogenetic trees from NEXUS documents, such as the
posterior samples written by MrBayes or BEAST.

A document is first split into its BEGIN/END blocks by Scan. The TAXA block
(DIMENSIONS and TAXLABELS) becomes a frozen taxon.Dictionary; the TREES block
may carry a TRANSLATE table mapping short tokens to taxon names, followed by
any number of TREE statements in Newick format. All trees of a document
refer to a single dictionary and store taxon ids only, so a sample of
thousands of trees keeps one copy of each taxon name.

Blocks other than TAXA and TREES are returned but not interpreted. Command
and block names are matched without regard to case. Comments in square
brackets may appear anywhere outside of quoted words.

Once the dictionary is complete, TREE statements are independent of each
other and can be parsed concurrently; see Options.
*/
package nexus
