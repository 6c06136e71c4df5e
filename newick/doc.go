/*
Package newick provides facilities for reading trees in the Newick format.
The format used is roughly equivalent to the conventions established here:
http://evolution.genetics.washington.edu/phylip/newick_doc.html. Quoted
labels (with '' standing for a literal quote) and comments in square brackets
are supported. A bracket directly after a label, a branch length or a ')' is
a vertex annotation, such as [&rate=0.5], and is rejected rather than
silently dropped.

Leaves do not store their labels. Each leaf label is handed to a Resolver,
which maps it to a taxon.ID of a shared taxon.Dictionary, so that many trees
over the same taxa cost no more than their topology and branch lengths.
Labels of internal nodes are kept verbatim.

The accepted syntax is given in EBNF by Grammar.
*/
package newick
