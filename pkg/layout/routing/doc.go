// Package routing computes orthogonal waypoints for every edge.
//
// # Grid Router
//
// [Grid] rasterizes the diagram onto a one-pixel grid. Every node rectangle,
// expanded by Margin on all sides, is an obstacle; a cell on the border of an
// expanded rectangle counts as blocked. The grid spans the union of all
// expanded rectangles plus Padding.
//
// For an edge, the router tries three exits on the source (top, right,
// bottom) against three entries on the target (top, left, bottom). Each
// exit and entry sits Margin pixels outside the side's midpoint. For every
// pair an A* search with unit steps in four directions and a Manhattan
// heuristic looks for a free cell next to the entry point. The pair with the
// fewest steps wins; ties go to the earlier pair in the order above.
//
// The winning path is reduced to its corner points and framed by the true
// boundary points of both nodes, so every edge has at least two waypoints.
// When no pair yields a path the edge keeps an empty waypoint list and is
// reported as unroutable.
//
// Each search stops after MaxExpansions expanded cells; a search that hits
// the limit counts as finding no path.
//
// # Elbow Router
//
// [Elbow] draws each edge with at most one bend, turning after the axis with
// the larger center distance. It ignores obstacles and must be requested
// explicitly.
package routing
